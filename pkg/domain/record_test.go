package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCreateNewRecordAssignsIdentity(t *testing.T) {
	ctx := testContext()
	r, err := CreateNewRecord(ctx, 1001, mustService(t, ServiceKeyDTV), mustCountry(t, CountryKeyUS), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Key != 100 {
		t.Fatalf("expected first key 100, got %d", r.Key)
	}
	if r.StudyKey != 7 {
		t.Fatalf("expected study key stamped, got %d", r.StudyKey)
	}
	if r.SignalType != SignalTypeATSC || r.EmissionMask != MaskFull {
		t.Fatalf("expected digital defaults, got signal=%d mask=%d", r.SignalType, r.EmissionMask)
	}
	if r.WasPersisted() {
		t.Fatalf("fresh record must not claim a persisted snapshot")
	}
}

func TestCreateNewRecordKeyExhaustion(t *testing.T) {
	ctx := NewStudyContext(Study{Key: 1}, NewSequentialKeys(MaxSourceKey))
	if _, err := CreateNewRecord(ctx, 1, mustService(t, ServiceKeyTV), mustCountry(t, CountryKeyUS), false); err != nil {
		t.Fatalf("last key should succeed: %v", err)
	}
	_, err := CreateNewRecord(ctx, 1, mustService(t, ServiceKeyTV), mustCountry(t, CountryKeyUS), false)
	if !errors.Is(err, ErrNoKeys) {
		t.Fatalf("expected ErrNoKeys, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	ctx := testContext()
	standalone := newTestRecord(t, ctx, ServiceKeyDTV)
	if standalone.Kind() != Standalone {
		t.Fatalf("expected standalone, got %s", standalone.Kind())
	}
	group := buildTestGroup(t, ctx)
	if group.Kind() != GroupParent {
		t.Fatalf("expected group parent, got %s", group.Kind())
	}
	for _, m := range group.Members() {
		want := GroupSite
		if m.SiteNumber == SiteNumberReference {
			want = GroupReferenceFacility
		}
		if m.Kind() != want {
			t.Fatalf("site %d: expected %s, got %s", m.SiteNumber, want, m.Kind())
		}
	}
}

func TestLockedSettersAreNoOps(t *testing.T) {
	ctx := testContext()
	r, err := CreateNewRecord(ctx, 1001, mustService(t, ServiceKeyDTV), mustCountry(t, CountryKeyUS), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.ApplyFields(validFields(r.Service)); err != nil {
		t.Fatalf("populate locked record: %v", err)
	}

	r.SetCallSign("CHANGED")
	r.SetChannel(44)
	r.SetLocation(0, 0)
	r.SetPeakERP(5)
	r.SetPattern(PatternHorizontal, testPattern(PatternHorizontal))
	r.SetAttribute("note", "x")
	r.DeleteAttribute("note")

	if r.CallSign != "WXYZ" || r.Channel != 30 || r.Latitude != 39.2 || r.PeakERP != 1000 {
		t.Fatalf("locked record was mutated: %+v", r)
	}
	if r.HorizontalPattern != nil {
		t.Fatalf("locked record accepted a pattern")
	}
	if _, ok := r.Attribute("note"); ok {
		t.Fatalf("locked record accepted an attribute")
	}
}

func TestApplyFieldsAfterSnapshotRefused(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.MarkLoaded()
	err := r.ApplyFields(validFields(r.Service))
	var illegal IllegalOperationError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalOperationError, got %v", err)
	}
}

func TestMakeRecordFromPrimary(t *testing.T) {
	ctx := testContext()
	r, err := MakeRecordFromPrimary(ctx, PrimaryRecord{
		ExtDbKey:    3,
		ExtRecordID: "row-99",
		FacilityID:  2002,
		Service:     mustService(t, ServiceKeyDTV),
		Country:     mustCountry(t, CountryKeyUS),
		Fields:      validFields(mustService(t, ServiceKeyDTV)),
	})
	if err != nil {
		t.Fatalf("make from primary: %v", err)
	}
	if !r.Locked {
		t.Fatalf("primary mirror must be locked")
	}
	if r.ExtDbKey != 3 || r.ExtRecordID != "row-99" {
		t.Fatalf("primary back-reference lost: %+v", r.RecordIdentity)
	}
	if r.CallSign != "WXYZ" {
		t.Fatalf("fields not applied, call sign %q", r.CallSign)
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetAttribute("licensee_name", "Example Broadcasting LLC")
	r.SetPattern(PatternHorizontal, testPattern(PatternHorizontal))

	payload, err := json.Marshal(*r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(payload, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Key != r.Key || back.CallSign != r.CallSign || back.Channel != r.Channel {
		t.Fatalf("identity or fields lost: %+v", back)
	}
	if got, ok := back.Attribute("licensee_name"); !ok || got != "Example Broadcasting LLC" {
		t.Fatalf("attribute lost: %q %v", got, ok)
	}
	if !back.HorizontalPattern.Equal(r.HorizontalPattern) {
		t.Fatalf("pattern content lost")
	}
	if back.HorizontalPattern.Changed {
		t.Fatalf("changed flag must not persist")
	}
}

func TestFlatCopyIsolation(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetPattern(PatternVertical, testPattern(PatternVertical))
	cp := r.FlatCopy()
	cp.VerticalPattern.Points[0].RelativeField = 0.1
	if r.VerticalPattern.Points[0].RelativeField == 0.1 {
		t.Fatalf("flat copy shares pattern storage with the source")
	}
}
