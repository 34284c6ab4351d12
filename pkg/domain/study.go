package domain

// Study is the owning context for a set of source records: it scopes key
// assignment and may narrow the channel range records are validated against.
type Study struct {
	Key           int    `json:"key"`
	Name          string `json:"name"`
	ChannelMin    int    `json:"channel_min"`
	ChannelMax    int    `json:"channel_max"`
	SourceKeySeq  int    `json:"source_key_seq"`
	ExtDbKey      int    `json:"ext_db_key"`
	TemplateKey   int    `json:"template_key"`
	PointSetKey   int    `json:"point_set_key"`
	PropagationID string `json:"propagation_id"`
}

// StudyContext carries the resolved context a record is edited under: the
// study identity (zero for a standalone import set), the channel range, and
// the key generator handling new keys for the context.
type StudyContext struct {
	StudyKey   int
	Name       string
	ChannelMin int
	ChannelMax int
	Keys       KeyGenerator
}

// NewStudyContext builds an editing context for a study. The channel range
// defaults to the full regulatory range when the study leaves it unset.
func NewStudyContext(study Study, keys KeyGenerator) *StudyContext {
	lo, hi := study.ChannelMin, study.ChannelMax
	if lo == 0 {
		lo = ChannelMin
	}
	if hi == 0 {
		hi = ChannelMax
	}
	return &StudyContext{StudyKey: study.Key, Name: study.Name, ChannelMin: lo, ChannelMax: hi, Keys: keys}
}

// NewImportContext builds a context for records with no study attached, such
// as a standalone import set. Keys are temporary and the channel range is the
// full regulatory range.
func NewImportContext(keys KeyGenerator) *StudyContext {
	if keys == nil {
		keys = NewTemporaryKeys()
	}
	return &StudyContext{ChannelMin: ChannelMin, ChannelMax: ChannelMax, Keys: keys}
}

// HasStudy reports whether the context is backed by a persisted study.
func (c *StudyContext) HasStudy() bool { return c != nil && c.StudyKey != 0 }

// ChannelRange returns the context channel bounds, or the full regulatory
// range for a nil context.
func (c *StudyContext) ChannelRange() (int, int) {
	if c == nil || c.ChannelMin == 0 || c.ChannelMax == 0 {
		return ChannelMin, ChannelMax
	}
	return c.ChannelMin, c.ChannelMax
}

// NextKey allocates a key from the context generator, or reports exhaustion.
func (c *StudyContext) NextKey() (int, error) {
	if c == nil || c.Keys == nil {
		return 0, ErrNoContext
	}
	key, ok := c.Keys.NextSourceKey()
	if !ok {
		return 0, ErrNoKeys
	}
	return key, nil
}
