package domain

import "testing"

func testContext() *StudyContext {
	return NewStudyContext(Study{Key: 7, Name: "coverage"}, NewSequentialKeys(100))
}

func mustService(t *testing.T, key int) ServiceType {
	t.Helper()
	s, ok := ServiceForKey(key)
	if !ok {
		t.Fatalf("service key %d not in catalog", key)
	}
	return s
}

func mustCountry(t *testing.T, key int) Country {
	t.Helper()
	c, ok := CountryForKey(key)
	if !ok {
		t.Fatalf("country key %d not in catalog", key)
	}
	return c
}

// newTestRecord creates an unlocked record with a full set of valid fields.
func newTestRecord(t *testing.T, ctx *StudyContext, serviceKey int) *Record {
	t.Helper()
	r, err := CreateNewRecord(ctx, 1001, mustService(t, serviceKey), mustCountry(t, CountryKeyUS), false)
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := r.ApplyFields(validFields(r.Service)); err != nil {
		t.Fatalf("apply fields: %v", err)
	}
	return r
}

func validFields(service ServiceType) RecordFields {
	f := RecordFields{
		CallSign:        "WXYZ",
		Channel:         30,
		City:            "Columbia",
		State:           "MD",
		Zone:            ZoneI,
		Status:          "LIC",
		FileNumber:      "BLCDT-20240101AAA",
		Latitude:        39.2,
		Longitude:       -76.8,
		HeightAMSL:      300,
		OverallHAAT:     250,
		PeakERP:         1000,
		AntennaID:       42,
		ServiceAreaMode: ServiceAreaContour,
	}
	f.SignalType = DefaultSignalType(service)
	f.EmissionMask = DefaultEmissionMask(service)
	return f
}

// buildTestGroup creates a DTS group with a reference facility and two
// transmitting sites, all unlocked.
func buildTestGroup(t *testing.T, ctx *StudyContext) *Record {
	t.Helper()
	dts := mustService(t, ServiceKeyDTV)
	key, err := ctx.NextKey()
	if err != nil {
		t.Fatalf("next key: %v", err)
	}
	group := NewRecordWithIdentity(ctx, RecordIdentity{
		Key:        key,
		FacilityID: 1001,
		Service:    dts,
		Country:    mustCountry(t, CountryKeyUS),
		IsParent:   true,
	})
	if err := group.ApplyFields(validFields(dts)); err != nil {
		t.Fatalf("apply group fields: %v", err)
	}
	group.SiteNumber = SiteNumberReference
	group.DTSMaximumDistance = 100

	for _, site := range []int{SiteNumberReference, 1, 2} {
		group.AddOrReplaceMember(newTestMember(t, ctx, group, site))
	}
	return group
}

func newTestMember(t *testing.T, ctx *StudyContext, group *Record, site int) *Record {
	t.Helper()
	key, err := ctx.NextKey()
	if err != nil {
		t.Fatalf("next key: %v", err)
	}
	m := NewRecordWithIdentity(ctx, RecordIdentity{
		Key:             key,
		FacilityID:      group.FacilityID,
		Service:         group.Service,
		Country:         group.Country,
		ParentSourceKey: group.Key,
	})
	fields := validFields(group.Service)
	fields.SiteNumber = site
	if err := m.ApplyFields(fields); err != nil {
		t.Fatalf("apply member fields: %v", err)
	}
	return m
}

func testPattern(slot PatternType) *Pattern {
	return &Pattern{
		Type: slot,
		Name: "test pattern",
		Points: []PatternPoint{
			{Angle: 0, RelativeField: 1},
			{Angle: 90, RelativeField: 0.7},
			{Angle: 180, RelativeField: 0.4},
		},
	}
}
