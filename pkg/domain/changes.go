package domain

// IsDataChanged reports whether the record (or, for a group, any of its
// members) differs from its last-persisted snapshot. A record that was never
// persisted is always changed; a locked record never is, because it cannot
// have been edited.
func (r *Record) IsDataChanged() bool {
	if r.persisted == nil {
		return true
	}
	if r.Locked {
		return false
	}
	if !fieldsEqual(r, r.persisted) {
		return true
	}
	if r.IsParent {
		if len(r.RemovedMemberKeys()) > 0 {
			return true
		}
		for _, m := range r.Members() {
			if m.IsDataChanged() {
				return true
			}
		}
	}
	return false
}

// fieldsEqual compares every persistable field of two records, including
// pattern content and the attribute bag. The snapshot is taken as an
// immutable copy, so comparison never mutates either side.
func fieldsEqual(a, b *Record) bool {
	if a.RecordIdentity != b.RecordIdentity {
		return false
	}
	if a.CallSign != b.CallSign ||
		a.Channel != b.Channel ||
		a.City != b.City ||
		a.State != b.State ||
		a.Zone != b.Zone ||
		a.Status != b.Status ||
		a.FileNumber != b.FileNumber ||
		a.SignalType != b.SignalType ||
		a.FrequencyOffset != b.FrequencyOffset ||
		a.EmissionMask != b.EmissionMask ||
		a.Latitude != b.Latitude ||
		a.Longitude != b.Longitude ||
		a.HeightAMSL != b.HeightAMSL ||
		a.OverallHAAT != b.OverallHAAT ||
		a.PeakERP != b.PeakERP ||
		a.AntennaID != b.AntennaID ||
		a.ServiceAreaMode != b.ServiceAreaMode ||
		a.ServiceAreaArg != b.ServiceAreaArg ||
		a.ServiceAreaCL != b.ServiceAreaCL ||
		a.DTSMaximumDistance != b.DTSMaximumDistance ||
		a.TimeDelay != b.TimeDelay ||
		a.SiteNumber != b.SiteNumber {
		return false
	}
	if patternDiffers(a.HorizontalPattern, b.HorizontalPattern) ||
		patternDiffers(a.VerticalPattern, b.VerticalPattern) ||
		patternDiffers(a.MatrixPattern, b.MatrixPattern) {
		return false
	}
	return a.attributes.Equal(b.attributes)
}

func patternDiffers(current, saved *Pattern) bool {
	if current != nil && current.Changed {
		return true
	}
	return !current.Equal(saved)
}
