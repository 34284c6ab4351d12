package domain

// Field setters. Every setter is a silent no-op on a locked record: the lock
// protects the invariant that a locked record always mirrors its persisted
// snapshot, without forcing each call site to pre-check. This is a deliberate
// API choice and differs from the reject-and-report handling elsewhere.

// SetCallSign sets the station call sign.
func (r *Record) SetCallSign(callSign string) {
	if r.Locked {
		return
	}
	r.CallSign = callSign
}

// SetChannel sets the operating channel. Validity against the context range
// is checked by IsDataValid, not here.
func (r *Record) SetChannel(channel int) {
	if r.Locked {
		return
	}
	r.Channel = channel
}

// SetCity sets the community city.
func (r *Record) SetCity(city string) {
	if r.Locked {
		return
	}
	r.City = city
}

// SetState sets the community state.
func (r *Record) SetState(state string) {
	if r.Locked {
		return
	}
	r.State = state
}

// SetZone sets the regulatory zone.
func (r *Record) SetZone(zone Zone) {
	if r.Locked {
		return
	}
	r.Zone = zone
}

// SetStatus sets the licensing status code.
func (r *Record) SetStatus(status string) {
	if r.Locked {
		return
	}
	r.Status = status
}

// SetFileNumber sets the application file number.
func (r *Record) SetFileNumber(fileNumber string) {
	if r.Locked {
		return
	}
	r.FileNumber = fileNumber
}

// SetSignalType sets the digital signal type.
func (r *Record) SetSignalType(signalType SignalType) {
	if r.Locked {
		return
	}
	r.SignalType = signalType
}

// SetFrequencyOffset sets the analog carrier offset.
func (r *Record) SetFrequencyOffset(offset FrequencyOffset) {
	if r.Locked {
		return
	}
	r.FrequencyOffset = offset
}

// SetEmissionMask sets the digital emission mask.
func (r *Record) SetEmissionMask(mask EmissionMask) {
	if r.Locked {
		return
	}
	r.EmissionMask = mask
}

// SetLocation sets the transmitter coordinates.
func (r *Record) SetLocation(latitude, longitude float64) {
	if r.Locked {
		return
	}
	r.Latitude = latitude
	r.Longitude = longitude
}

// SetHeight sets antenna height above mean sea level and overall HAAT.
func (r *Record) SetHeight(heightAMSL, overallHAAT float64) {
	if r.Locked {
		return
	}
	r.HeightAMSL = heightAMSL
	r.OverallHAAT = overallHAAT
}

// SetPeakERP sets the peak effective radiated power in kilowatts.
func (r *Record) SetPeakERP(erp float64) {
	if r.Locked {
		return
	}
	r.PeakERP = erp
}

// SetAntennaID sets the antenna record reference.
func (r *Record) SetAntennaID(id int) {
	if r.Locked {
		return
	}
	r.AntennaID = id
}

// SetPattern installs pattern data in the given slot and marks the slot
// changed. A nil pattern clears the slot.
func (r *Record) SetPattern(slot PatternType, p *Pattern) {
	if r.Locked {
		return
	}
	if p != nil {
		p.Type = slot
		p.Changed = true
	}
	switch slot {
	case PatternHorizontal:
		r.HorizontalPattern = p
	case PatternVertical:
		r.VerticalPattern = p
	case PatternMatrix:
		r.MatrixPattern = p
	}
}

// Pattern returns the pattern in the given slot, nil when absent.
func (r *Record) Pattern(slot PatternType) *Pattern {
	switch slot {
	case PatternHorizontal:
		return r.HorizontalPattern
	case PatternVertical:
		return r.VerticalPattern
	case PatternMatrix:
		return r.MatrixPattern
	default:
		return nil
	}
}

// SetServiceArea sets the service area definition.
func (r *Record) SetServiceArea(mode ServiceAreaMode, arg, contourLevel float64) {
	if r.Locked {
		return
	}
	r.ServiceAreaMode = mode
	r.ServiceAreaArg = arg
	r.ServiceAreaCL = contourLevel
}

// SetDTSMaximumDistance sets the distributed-operation bounding distance.
func (r *Record) SetDTSMaximumDistance(km float64) {
	if r.Locked {
		return
	}
	r.DTSMaximumDistance = km
}

// SetTimeDelay sets the transmitter timing offset in microseconds.
func (r *Record) SetTimeDelay(microseconds float64) {
	if r.Locked {
		return
	}
	r.TimeDelay = microseconds
}

// SetSiteNumber sets the site number within a distributed group. Zero is
// reserved for the reference facility.
func (r *Record) SetSiteNumber(site int) {
	if r.Locked {
		return
	}
	r.SiteNumber = site
}
