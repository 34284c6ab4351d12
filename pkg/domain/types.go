// Package domain defines the broadcast-source record model, its hierarchy
// and derivation semantics, and the rule evaluation primitives used by
// studycore.
package domain

// ServiceType classifies a broadcast service. The classification is part of a
// record's immutable identity; changing it requires derivation.
type ServiceType struct {
	Key  int
	Code string
	Name string
	// Digital is true for digital services, false for analog.
	Digital bool
	// DTS is true when the service may head a distributed (multi-site)
	// operation.
	DTS bool
	// DigitalEquivalentKey is the key of the digital counterpart service, or
	// zero when none exists.
	DigitalEquivalentKey int
}

// IsNull reports whether the service is the zero value.
func (s ServiceType) IsNull() bool { return s.Key == 0 }

// Service catalog keys.
const (
	ServiceKeyTV       = 1 // analog full service
	ServiceKeyDTV      = 2 // digital full service
	ServiceKeyClassA   = 3 // analog Class A
	ServiceKeyClassADT = 4 // digital Class A
	ServiceKeyLPTV     = 5 // analog low power
	ServiceKeyLPD      = 6 // digital low power
)

var serviceCatalog = map[int]ServiceType{
	ServiceKeyTV:       {Key: ServiceKeyTV, Code: "TV", Name: "TV analog full service", DigitalEquivalentKey: ServiceKeyDTV},
	ServiceKeyDTV:      {Key: ServiceKeyDTV, Code: "DT", Name: "TV digital full service", Digital: true, DTS: true},
	ServiceKeyClassA:   {Key: ServiceKeyClassA, Code: "CA", Name: "Class A analog", DigitalEquivalentKey: ServiceKeyClassADT},
	ServiceKeyClassADT: {Key: ServiceKeyClassADT, Code: "DC", Name: "Class A digital", Digital: true},
	ServiceKeyLPTV:     {Key: ServiceKeyLPTV, Code: "TX", Name: "TV analog low power", DigitalEquivalentKey: ServiceKeyLPD},
	ServiceKeyLPD:      {Key: ServiceKeyLPD, Code: "LD", Name: "TV digital low power", Digital: true},
}

// ServiceForKey resolves a catalog service by key.
func ServiceForKey(key int) (ServiceType, bool) {
	s, ok := serviceCatalog[key]
	return s, ok
}

// DigitalEquivalent returns the digital counterpart of the service. For a
// service that is already digital it returns the service itself.
func (s ServiceType) DigitalEquivalent() (ServiceType, bool) {
	if s.Digital {
		return s, true
	}
	if s.DigitalEquivalentKey == 0 {
		return ServiceType{}, false
	}
	return ServiceForKey(s.DigitalEquivalentKey)
}

// Country identifies the administration a record operates under.
type Country struct {
	Key  int
	Code string
	Name string
}

// IsNull reports whether the country is the zero value.
func (c Country) IsNull() bool { return c.Key == 0 }

// Country catalog keys.
const (
	CountryKeyUS = 1
	CountryKeyCA = 2
	CountryKeyMX = 3
)

var countryCatalog = map[int]Country{
	CountryKeyUS: {Key: CountryKeyUS, Code: "US", Name: "United States"},
	CountryKeyCA: {Key: CountryKeyCA, Code: "CA", Name: "Canada"},
	CountryKeyMX: {Key: CountryKeyMX, Code: "MX", Name: "Mexico"},
}

// CountryForKey resolves a catalog country by key.
func CountryForKey(key int) (Country, bool) {
	c, ok := countryCatalog[key]
	return c, ok
}

// SignalType identifies a digital transmission standard.
type SignalType int

// Signal types carried by digital records.
const (
	SignalTypeNone SignalType = iota
	SignalTypeATSC
	SignalTypeATSC3
)

// FrequencyOffset enumerates analog carrier offsets.
type FrequencyOffset int

// Carrier offsets; replication always resets the offset to none.
const (
	OffsetNone FrequencyOffset = iota
	OffsetPlus
	OffsetMinus
	OffsetZero
)

// EmissionMask enumerates digital emission mask requirements.
type EmissionMask int

// Emission masks. MaskNone is the only valid value for analog services.
const (
	MaskNone EmissionMask = iota
	MaskFull
	MaskSimple
	MaskStringent
)

// DefaultEmissionMask returns the mask a freshly created record of the
// service carries.
func DefaultEmissionMask(service ServiceType) EmissionMask {
	if service.Digital {
		return MaskFull
	}
	return MaskNone
}

// DefaultSignalType returns the signal type a freshly created record of the
// service carries.
func DefaultSignalType(service ServiceType) SignalType {
	if service.Digital {
		return SignalTypeATSC
	}
	return SignalTypeNone
}

// Zone identifies the regulatory zone of a transmitter location.
type Zone int

// Zones; ZoneNone means not assigned.
const (
	ZoneNone Zone = iota
	ZoneI
	ZoneII
	ZoneIII
)

// ServiceAreaMode selects how a record's protected service area is defined.
type ServiceAreaMode int

// Service area modes. Contour mode derives the area from the propagation
// curves; the other modes take an explicit argument.
const (
	ServiceAreaContour ServiceAreaMode = iota
	ServiceAreaRadius
	ServiceAreaGeography
	ServiceAreaContourLR
)

// Full regulatory channel range. A study context may narrow it, but group
// parents and reference facilities always validate against the full range.
const (
	ChannelMin = 2
	ChannelMax = 51
)

// Bounds enforced by record validation.
const (
	MinDTSDistance      = 0.0
	MaxDTSDistance      = 999.0
	MinServiceAreaArg   = 0.0
	MaxServiceAreaArg   = 500.0
	MinServiceAreaCL    = -10.0
	MaxServiceAreaCL    = 120.0
	MinTimeDelay        = -99.0
	MaxTimeDelay        = 999.0
	MaxSourceKey        = 1<<31 - 1
	SiteNumberReference = 0
)

// ERPPendingDerivation marks a replicated record whose effective radiated
// power has not yet been computed by the study engine.
const ERPPendingDerivation = -999.0
