package domain

// IsDataValid checks the record against the validity rules, collecting
// per-field findings in log when one is supplied. A locked record is
// vacuously valid: it cannot have been edited.
func (r *Record) IsDataValid(log *ErrorLog) bool {
	if r.Locked {
		return true
	}
	valid := true
	fail := func(field, format string, args ...any) {
		log.Logf(field, format, args...)
		valid = false
	}

	lo, hi := r.channelRange()
	if r.Channel < lo || r.Channel > hi {
		fail("channel", "channel %d outside allowed range %d-%d", r.Channel, lo, hi)
	}
	if r.CallSign == "" {
		fail("call_sign", "call sign is required")
	}
	if r.City == "" {
		fail("city", "city is required")
	}
	if r.State == "" {
		fail("state", "state is required")
	}
	if r.Service.IsNull() {
		fail("service", "service is not resolved")
	}
	if r.Country.IsNull() {
		fail("country", "country is not resolved")
	}
	if r.AntennaID < 0 {
		fail("antenna_id", "antenna key must be non-negative")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		fail("latitude", "latitude %.6f outside -90..90", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		fail("longitude", "longitude %.6f outside -180..180", r.Longitude)
	}
	if r.Service.Digital {
		if r.EmissionMask == MaskNone {
			fail("emission_mask", "digital service requires an emission mask")
		}
		if r.SignalType == SignalTypeNone {
			fail("signal_type", "digital service requires a signal type")
		}
	} else if r.EmissionMask != MaskNone {
		fail("emission_mask", "analog service cannot carry an emission mask")
	}
	switch r.ServiceAreaMode {
	case ServiceAreaRadius, ServiceAreaGeography:
		if r.ServiceAreaArg < MinServiceAreaArg || r.ServiceAreaArg > MaxServiceAreaArg {
			fail("service_area_arg", "service area argument %.1f outside %.1f-%.1f", r.ServiceAreaArg, MinServiceAreaArg, MaxServiceAreaArg)
		}
	}
	if r.ServiceAreaCL != 0 && (r.ServiceAreaCL < MinServiceAreaCL || r.ServiceAreaCL > MaxServiceAreaCL) {
		fail("service_area_cl", "contour level %.1f outside %.1f-%.1f", r.ServiceAreaCL, MinServiceAreaCL, MaxServiceAreaCL)
	}
	if r.TimeDelay < MinTimeDelay || r.TimeDelay > MaxTimeDelay {
		fail("time_delay", "time delay %.1f outside %.1f-%.1f", r.TimeDelay, MinTimeDelay, MaxTimeDelay)
	}
	if r.Kind() != GroupReferenceFacility && !r.IsParent && r.PeakERP <= 0 && r.PeakERP != ERPPendingDerivation {
		fail("peak_erp", "peak ERP must be positive")
	}

	if r.IsParent {
		valid = r.validateGroup(log) && valid
	}
	return valid
}

// channelRange returns the range the record's channel is checked against.
// Group parents and reference facilities always use the full regulatory
// range: their channel is a synthetic contour-projection input, never an
// operating assignment. Records with no owning context also use the full
// range.
func (r *Record) channelRange() (int, int) {
	if r.IsParent || r.Kind() == GroupReferenceFacility || r.ctx == nil {
		return ChannelMin, ChannelMax
	}
	return r.ctx.ChannelRange()
}

func (r *Record) validateGroup(log *ErrorLog) bool {
	valid := true
	fail := func(field, format string, args ...any) {
		log.Logf(field, format, args...)
		valid = false
	}
	if r.SiteNumber != SiteNumberReference {
		fail("site_number", "group record site number must be 0, got %d", r.SiteNumber)
	}
	if r.DTSMaximumDistance < MinDTSDistance || r.DTSMaximumDistance > MaxDTSDistance {
		fail("dts_maximum_distance", "distance %.1f outside %.1f-%.1f", r.DTSMaximumDistance, MinDTSDistance, MaxDTSDistance)
	}
	members := r.Members()
	if len(members) == 0 {
		fail("members", "group has no member sites")
		return valid
	}
	refs, sites := 0, 0
	for _, m := range members {
		if m.ParentSourceKey != r.Key {
			fail("members", "member %d parent key %d does not match group key %d", m.Key, m.ParentSourceKey, r.Key)
		}
		if m.SiteNumber == SiteNumberReference {
			refs++
		} else {
			sites++
		}
		memberLog := &ErrorLog{}
		if !m.IsDataValid(memberLog) {
			valid = false
			log.Merge(memberLog)
		}
	}
	if refs != 1 {
		fail("members", "group must have exactly one reference facility, found %d", refs)
	}
	if sites < 1 {
		fail("members", "group must have at least one transmitting site")
	}
	return valid
}
