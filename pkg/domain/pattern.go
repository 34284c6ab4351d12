package domain

import "context"

// PatternType identifies which antenna pattern slot a pattern occupies.
type PatternType int

// Pattern slots. Each slot on a record is independently present-or-absent
// and independently changed-since-load.
const (
	PatternHorizontal PatternType = iota
	PatternVertical
	PatternMatrix
)

// String returns the slot name used in blob keys and log output.
func (t PatternType) String() string {
	switch t {
	case PatternHorizontal:
		return "horizontal"
	case PatternVertical:
		return "vertical"
	case PatternMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// PatternPoint is one tabulated relative-field value. Angle is azimuth in
// degrees for horizontal patterns and depression angle for vertical ones.
type PatternPoint struct {
	Angle         float64 `json:"angle"`
	RelativeField float64 `json:"relative_field"`
}

// PatternSlice is one vertical slice of a matrix pattern, keyed by azimuth.
type PatternSlice struct {
	Azimuth float64        `json:"azimuth"`
	Points  []PatternPoint `json:"points"`
}

// Pattern holds tabulated antenna pattern data referenced by a record.
type Pattern struct {
	Type            PatternType    `json:"type"`
	Name            string         `json:"name"`
	Orientation     float64        `json:"orientation"`
	ElectricalTilt  float64        `json:"electrical_tilt"`
	MechanicalTilt  float64        `json:"mechanical_tilt"`
	TiltOrientation float64        `json:"tilt_orientation"`
	Points          []PatternPoint `json:"points,omitempty"`
	Slices          []PatternSlice `json:"slices,omitempty"`

	// Changed tracks in-memory modification since load. A deep copy made by
	// derivation is always marked changed: the copy is new content owned by
	// a different record even when byte-identical.
	Changed bool `json:"-"`
}

// Copy returns a deep copy sharing no mutable state with the receiver. The
// copy's Changed flag is forced true.
func (p *Pattern) Copy() *Pattern {
	if p == nil {
		return nil
	}
	cp := *p
	if len(p.Points) != 0 {
		cp.Points = append([]PatternPoint(nil), p.Points...)
	}
	if len(p.Slices) != 0 {
		cp.Slices = make([]PatternSlice, len(p.Slices))
		for i, sl := range p.Slices {
			cp.Slices[i] = PatternSlice{Azimuth: sl.Azimuth, Points: append([]PatternPoint(nil), sl.Points...)}
		}
	}
	cp.Changed = true
	return &cp
}

// Equal compares pattern content. The Changed flag is excluded; it tracks
// bookkeeping, not content.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == nil && other == nil
	}
	if p.Type != other.Type || p.Name != other.Name ||
		p.Orientation != other.Orientation ||
		p.ElectricalTilt != other.ElectricalTilt ||
		p.MechanicalTilt != other.MechanicalTilt ||
		p.TiltOrientation != other.TiltOrientation ||
		len(p.Points) != len(other.Points) || len(p.Slices) != len(other.Slices) {
		return false
	}
	for i, pt := range p.Points {
		if pt != other.Points[i] {
			return false
		}
	}
	for i, sl := range p.Slices {
		if sl.Azimuth != other.Slices[i].Azimuth || len(sl.Points) != len(other.Slices[i].Points) {
			return false
		}
		for j, pt := range sl.Points {
			if pt != other.Slices[i].Points[j] {
				return false
			}
		}
	}
	return true
}

// PatternLoader loads pattern data for a record from the pattern subsystem.
// Derivation consults it lazily, only when a pattern slot is referenced but
// not resident in memory. A nil result with nil error means no stored
// pattern exists for the slot.
type PatternLoader interface {
	LoadHorizontal(ctx context.Context, sourceKey int) (*Pattern, error)
	LoadVertical(ctx context.Context, sourceKey int) (*Pattern, error)
	LoadMatrix(ctx context.Context, sourceKey int) (*Pattern, error)
}
