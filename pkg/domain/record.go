package domain

import (
	"encoding/json"
	"sync"

	"studycore/pkg/domain/attr"
)

// RecordKind discriminates the four structural roles a record can occupy.
// It is computed from (ParentSourceKey, SiteNumber, IsParent) so the four-way
// branching in validation and derivation stays exhaustive.
type RecordKind int

// Structural roles.
const (
	// Standalone is an ordinary top-level record.
	Standalone RecordKind = iota
	// GroupParent heads a distributed operation and owns member records.
	GroupParent
	// GroupReferenceFacility is the site-0 member of a group. Its parameters
	// only feed the group-wide bounding contour; it never transmits.
	GroupReferenceFacility
	// GroupSite is a transmitting member of a group (site number > 0).
	GroupSite
)

// String returns the role name.
func (k RecordKind) String() string {
	switch k {
	case GroupParent:
		return "group_parent"
	case GroupReferenceFacility:
		return "reference_facility"
	case GroupSite:
		return "group_site"
	default:
		return "standalone"
	}
}

// RecordIdentity holds the immutable identity of a record. Identity is fixed
// at construction; only derivation produces a record with different identity.
type RecordIdentity struct {
	Key               int         `json:"key"`
	FacilityID        int         `json:"facility_id"`
	Service           ServiceType `json:"service"`
	Country           Country     `json:"country"`
	Locked            bool        `json:"locked"`
	ExtDbKey          int         `json:"ext_db_key,omitempty"`
	ExtRecordID       string      `json:"ext_record_id,omitempty"`
	UserRecordID      int         `json:"user_record_id,omitempty"`
	OriginalSourceKey int         `json:"original_source_key,omitempty"`
	ParentSourceKey   int         `json:"parent_source_key,omitempty"`
	IsParent          bool        `json:"is_parent,omitempty"`
	StudyKey          int         `json:"study_key,omitempty"`
}

// RecordFields holds the mutable operational fields of a record. It is the
// populate payload consumed at construction by import codecs and primary-row
// loaders; after a record acquires a persisted snapshot the per-field setters
// are the only mutation path.
type RecordFields struct {
	CallSign           string
	Channel            int
	City               string
	State              string
	Zone               Zone
	Status             string
	FileNumber         string
	SignalType         SignalType
	FrequencyOffset    FrequencyOffset
	EmissionMask       EmissionMask
	Latitude           float64
	Longitude          float64
	HeightAMSL         float64
	OverallHAAT        float64
	PeakERP            float64
	AntennaID          int
	HorizontalPattern  *Pattern
	VerticalPattern    *Pattern
	MatrixPattern      *Pattern
	ServiceAreaMode    ServiceAreaMode
	ServiceAreaArg     float64
	ServiceAreaCL      float64
	DTSMaximumDistance float64
	TimeDelay          float64
	SiteNumber         int
	Attributes         attr.Bag
}

// Record represents one transmitting facility, or one site of a distributed
// operation. Fields are exported for persistence; mutation after load must go
// through the setter methods, which enforce the lock discipline.
type Record struct {
	RecordIdentity

	CallSign           string          `json:"call_sign"`
	Channel            int             `json:"channel"`
	City               string          `json:"city"`
	State              string          `json:"state"`
	Zone               Zone            `json:"zone"`
	Status             string          `json:"status"`
	FileNumber         string          `json:"file_number"`
	SignalType         SignalType      `json:"signal_type"`
	FrequencyOffset    FrequencyOffset `json:"frequency_offset"`
	EmissionMask       EmissionMask    `json:"emission_mask"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	HeightAMSL         float64         `json:"height_amsl"`
	OverallHAAT        float64         `json:"overall_haat"`
	PeakERP            float64         `json:"peak_erp"`
	AntennaID          int             `json:"antenna_id"`
	HorizontalPattern  *Pattern        `json:"horizontal_pattern,omitempty"`
	VerticalPattern    *Pattern        `json:"vertical_pattern,omitempty"`
	MatrixPattern      *Pattern        `json:"matrix_pattern,omitempty"`
	ServiceAreaMode    ServiceAreaMode `json:"service_area_mode"`
	ServiceAreaArg     float64         `json:"service_area_arg"`
	ServiceAreaCL      float64         `json:"service_area_cl"`
	DTSMaximumDistance float64         `json:"dts_maximum_distance,omitempty"`
	TimeDelay          float64         `json:"time_delay,omitempty"`
	SiteNumber         int             `json:"site_number"`

	attributes attr.Bag

	ctx       *StudyContext
	group     *groupState
	persisted *Record
}

// groupState is the hierarchy working state of a parent record. Held by
// pointer so record values copy cleanly; all member-set mutation serialises
// on mu because UI edits and background import workers may target the same
// group.
type groupState struct {
	mu      sync.Mutex
	members map[int]*Record
	added   map[int]struct{}
	removed map[int]struct{}
	view    []*Record
}

func newGroupState() *groupState {
	return &groupState{
		members: make(map[int]*Record),
		added:   make(map[int]struct{}),
		removed: make(map[int]struct{}),
	}
}

// NewRecordWithIdentity is the construct-with-identity hook used by import
// codecs and stores. The record starts with field defaults for its service
// and no persisted snapshot.
func NewRecordWithIdentity(ctx *StudyContext, id RecordIdentity) *Record {
	r := &Record{RecordIdentity: id, ctx: ctx}
	if ctx.HasStudy() {
		r.StudyKey = ctx.StudyKey
	}
	r.SignalType = DefaultSignalType(id.Service)
	r.EmissionMask = DefaultEmissionMask(id.Service)
	if id.IsParent {
		r.group = newGroupState()
	}
	return r
}

// CreateNewRecord creates a fresh record with a newly assigned key from the
// owning context. Returns ErrNoKeys when the context key space is exhausted.
func CreateNewRecord(ctx *StudyContext, facilityID int, service ServiceType, country Country, locked bool) (*Record, error) {
	key, err := ctx.NextKey()
	if err != nil {
		return nil, err
	}
	return NewRecordWithIdentity(ctx, RecordIdentity{
		Key:        key,
		FacilityID: facilityID,
		Service:    service,
		Country:    country,
		Locked:     locked,
	}), nil
}

// PrimaryRecord is the narrow view of an external primary data source row
// that MakeRecordFromPrimary consumes.
type PrimaryRecord struct {
	ExtDbKey    int
	ExtRecordID string
	FacilityID  int
	Service     ServiceType
	Country     Country
	Fields      RecordFields
}

// MakeRecordFromPrimary creates a locked record mirroring an external primary
// row. The back-reference to the primary row is retained so exports can
// recover provenance.
func MakeRecordFromPrimary(ctx *StudyContext, primary PrimaryRecord) (*Record, error) {
	key, err := ctx.NextKey()
	if err != nil {
		return nil, err
	}
	r := NewRecordWithIdentity(ctx, RecordIdentity{
		Key:         key,
		FacilityID:  primary.FacilityID,
		Service:     primary.Service,
		Country:     primary.Country,
		Locked:      true,
		ExtDbKey:    primary.ExtDbKey,
		ExtRecordID: primary.ExtRecordID,
	})
	if err := r.ApplyFields(primary.Fields); err != nil {
		return nil, err
	}
	return r, nil
}

// ApplyFields is the populate-fields hook. It assigns every operational field
// at once and is only legal before the record acquires a persisted snapshot;
// population is part of construction, not an edit, so it applies to locked
// records too.
func (r *Record) ApplyFields(f RecordFields) error {
	if r.persisted != nil {
		return illegalOp("populate", "record %d already has a persisted snapshot", r.Key)
	}
	r.CallSign = f.CallSign
	r.Channel = f.Channel
	r.City = f.City
	r.State = f.State
	r.Zone = f.Zone
	r.Status = f.Status
	r.FileNumber = f.FileNumber
	if f.SignalType != SignalTypeNone || !r.Service.Digital {
		r.SignalType = f.SignalType
	}
	r.FrequencyOffset = f.FrequencyOffset
	if f.EmissionMask != MaskNone || !r.Service.Digital {
		r.EmissionMask = f.EmissionMask
	}
	r.Latitude = f.Latitude
	r.Longitude = f.Longitude
	r.HeightAMSL = f.HeightAMSL
	r.OverallHAAT = f.OverallHAAT
	r.PeakERP = f.PeakERP
	r.AntennaID = f.AntennaID
	r.HorizontalPattern = f.HorizontalPattern
	r.VerticalPattern = f.VerticalPattern
	r.MatrixPattern = f.MatrixPattern
	r.ServiceAreaMode = f.ServiceAreaMode
	r.ServiceAreaArg = f.ServiceAreaArg
	r.ServiceAreaCL = f.ServiceAreaCL
	r.DTSMaximumDistance = f.DTSMaximumDistance
	r.TimeDelay = f.TimeDelay
	r.SiteNumber = f.SiteNumber
	r.attributes = f.Attributes.Copy()
	return nil
}

// Kind returns the structural role of the record.
func (r *Record) Kind() RecordKind {
	switch {
	case r.IsParent:
		return GroupParent
	case r.ParentSourceKey != 0 && r.SiteNumber == SiteNumberReference:
		return GroupReferenceFacility
	case r.ParentSourceKey != 0:
		return GroupSite
	default:
		return Standalone
	}
}

// Context returns the owning editing context, nil for detached records.
func (r *Record) Context() *StudyContext { return r.ctx }

// AttachContext binds a loaded record to an editing context. It does not
// change identity; StudyKey stays as persisted.
func (r *Record) AttachContext(ctx *StudyContext) { r.ctx = ctx }

// Rehydrate prepares a flat persistence row for live editing: the context is
// attached and a parent regains empty hierarchy working state so members can
// be reattached.
func (r *Record) Rehydrate(ctx *StudyContext) {
	r.ctx = ctx
	if r.IsParent && r.group == nil {
		r.group = newGroupState()
	}
}

// Attribute returns the value of a bag attribute and whether it is set.
func (r *Record) Attribute(key string) (string, bool) { return r.attributes.Get(key) }

// SetAttribute stores a bag attribute. Silent no-op on a locked record.
func (r *Record) SetAttribute(key, value string) {
	if r.Locked {
		return
	}
	r.attributes.Set(key, value)
}

// DeleteAttribute removes a bag attribute. Silent no-op on a locked record.
func (r *Record) DeleteAttribute(key string) {
	if r.Locked {
		return
	}
	r.attributes.Delete(key)
}

// Attributes returns a value copy of the attribute bag.
func (r *Record) Attributes() attr.Bag { return r.attributes.Copy() }

// MarkLoaded establishes the current field values as the persisted snapshot:
// the record is now considered saved. Pattern changed flags and hierarchy
// tracking reset; members are marked loaded recursively.
func (r *Record) MarkLoaded() {
	clearPatternChanged(r)
	snap := r.flatCopy()
	r.persisted = &snap
	if r.group != nil {
		r.group.mu.Lock()
		r.group.added = make(map[int]struct{})
		r.group.removed = make(map[int]struct{})
		members := make([]*Record, 0, len(r.group.members))
		for _, m := range r.group.members {
			members = append(members, m)
		}
		r.group.mu.Unlock()
		for _, m := range members {
			m.MarkLoaded()
		}
	}
}

// WasPersisted reports whether the record has ever been saved or loaded.
func (r *Record) WasPersisted() bool { return r.persisted != nil }

func clearPatternChanged(r *Record) {
	if r.HorizontalPattern != nil {
		r.HorizontalPattern.Changed = false
	}
	if r.VerticalPattern != nil {
		r.VerticalPattern.Changed = false
	}
	if r.MatrixPattern != nil {
		r.MatrixPattern.Changed = false
	}
}

// flatCopy returns a value copy of the persistable state: patterns and
// attributes deep-copied, hierarchy working state and snapshot dropped. Flat
// copies are what the arena stores; membership is expressed only through
// ParentSourceKey, never through live pointers.
func (r *Record) flatCopy() Record {
	cp := *r
	cp.HorizontalPattern = copyPatternVerbatim(r.HorizontalPattern)
	cp.VerticalPattern = copyPatternVerbatim(r.VerticalPattern)
	cp.MatrixPattern = copyPatternVerbatim(r.MatrixPattern)
	cp.attributes = r.attributes.Copy()
	cp.ctx = nil
	cp.group = nil
	cp.persisted = nil
	return cp
}

// FlatCopy exposes the arena row form of the record for persistence layers.
func (r *Record) FlatCopy() Record { return r.flatCopy() }

// copyPatternVerbatim deep-copies a pattern preserving its Changed flag, in
// contrast to Pattern.Copy which forces it.
func copyPatternVerbatim(p *Pattern) *Pattern {
	if p == nil {
		return nil
	}
	changed := p.Changed
	cp := p.Copy()
	cp.Changed = changed
	return cp
}

type recordAlias Record

// MarshalJSON serialises the record with the attribute bag encoded as one
// string column.
func (r Record) MarshalJSON() ([]byte, error) {
	type payload struct {
		recordAlias
		Attributes string `json:"attributes,omitempty"`
	}
	return json.Marshal(payload{recordAlias: recordAlias(r), Attributes: r.attributes.Encode()})
}

// UnmarshalJSON hydrates the record, decoding the attribute bag. Hierarchy
// working state is rebuilt by the loading layer, not carried in JSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	type payload struct {
		recordAlias
		Attributes string `json:"attributes"`
	}
	var aux payload
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record(aux.recordAlias)
	bag, err := attr.Decode(aux.Attributes)
	if err != nil {
		return err
	}
	r.attributes = bag
	if r.IsParent && r.group == nil {
		r.group = newGroupState()
	}
	return nil
}
