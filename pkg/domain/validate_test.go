package domain

import (
	"strings"
	"testing"
)

func TestValidRecordPasses(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	log := &ErrorLog{}
	if !r.IsDataValid(log) {
		t.Fatalf("expected valid, got %v", log.Messages())
	}
	if log.HasErrors() {
		t.Fatalf("valid record logged findings: %v", log.Messages())
	}
}

func TestLockedRecordVacuouslyValid(t *testing.T) {
	ctx := testContext()
	r, err := CreateNewRecord(ctx, 1, mustService(t, ServiceKeyDTV), mustCountry(t, CountryKeyUS), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// No fields populated at all; a locked record is still valid because it
	// cannot have been edited.
	if !r.IsDataValid(nil) {
		t.Fatalf("locked record must be vacuously valid")
	}
}

func TestValidationCollectsPerFieldFindings(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetCallSign("")
	r.SetCity("")
	r.SetLocation(95, -300)
	log := &ErrorLog{}
	if r.IsDataValid(log) {
		t.Fatalf("expected invalid")
	}
	fields := map[string]bool{}
	for _, m := range log.Messages() {
		fields[m.Field] = true
	}
	for _, want := range []string{"call_sign", "city", "latitude", "longitude"} {
		if !fields[want] {
			t.Fatalf("missing finding for %s, got %v", want, log.Messages())
		}
	}
}

func TestChannelRangeNarrowedByStudy(t *testing.T) {
	ctx := NewStudyContext(Study{Key: 3, ChannelMin: 14, ChannelMax: 36}, NewSequentialKeys(1))
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetChannel(2)
	log := &ErrorLog{}
	if r.IsDataValid(log) {
		t.Fatalf("channel 2 must fail a 14-36 study")
	}
	r.SetChannel(20)
	if !r.IsDataValid(nil) {
		t.Fatalf("channel 20 must pass a 14-36 study")
	}
}

func TestGroupParentUsesFullChannelRange(t *testing.T) {
	ctx := NewStudyContext(Study{Key: 3, ChannelMin: 14, ChannelMax: 36}, NewSequentialKeys(1))
	group := buildTestGroup(t, ctx)
	group.SetChannel(2)
	for _, m := range group.Members() {
		m.SetChannel(20)
	}
	if !group.IsDataValid(nil) {
		t.Fatalf("group channel is a projection input and must use the full range")
	}
}

func TestDigitalMaskAndSignalRequired(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetEmissionMask(MaskNone)
	r.SetSignalType(SignalTypeNone)
	log := &ErrorLog{}
	if r.IsDataValid(log) {
		t.Fatalf("digital record without mask and signal type must fail")
	}
}

func TestAnalogRejectsEmissionMask(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyTV)
	r.SetEmissionMask(MaskFull)
	if r.IsDataValid(nil) {
		t.Fatalf("analog record with an emission mask must fail")
	}
}

func TestPendingERPPlaceholderAccepted(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.SetPeakERP(ERPPendingDerivation)
	if !r.IsDataValid(nil) {
		t.Fatalf("pending-derivation ERP placeholder must validate")
	}
	r.SetPeakERP(0)
	if r.IsDataValid(nil) {
		t.Fatalf("zero ERP must fail")
	}
}

func TestGroupValidation(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	if !group.IsDataValid(nil) {
		log := &ErrorLog{}
		group.IsDataValid(log)
		t.Fatalf("well-formed group must validate: %v", log.Messages())
	}

	group.SetSiteNumber(3)
	log := &ErrorLog{}
	if group.IsDataValid(log) {
		t.Fatalf("group with nonzero site number must fail")
	}
	group.SetSiteNumber(SiteNumberReference)

	group.SetDTSMaximumDistance(MaxDTSDistance + 1)
	if group.IsDataValid(nil) {
		t.Fatalf("out-of-range DTS distance must fail")
	}
	group.SetDTSMaximumDistance(100)
}

func TestGroupRequiresExactlyOneReferenceFacility(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	var ref *Record
	for _, m := range group.Members() {
		if m.SiteNumber == SiteNumberReference {
			ref = m
		}
	}
	group.RemoveMember(ref)
	log := &ErrorLog{}
	if group.IsDataValid(log) {
		t.Fatalf("group without a reference facility must fail")
	}
	found := false
	for _, m := range log.Messages() {
		if strings.Contains(m.Message, "reference facility") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reference facility finding, got %v", log.Messages())
	}
}

func TestGroupWithNoMembersFails(t *testing.T) {
	ctx := testContext()
	dts := mustService(t, ServiceKeyDTV)
	key, _ := ctx.NextKey()
	group := NewRecordWithIdentity(ctx, RecordIdentity{
		Key: key, FacilityID: 1, Service: dts, Country: mustCountry(t, CountryKeyUS), IsParent: true,
	})
	if err := group.ApplyFields(validFields(dts)); err != nil {
		t.Fatalf("populate: %v", err)
	}
	group.SetSiteNumber(SiteNumberReference)
	if group.IsDataValid(nil) {
		t.Fatalf("empty group must fail")
	}
}

func TestGroupMergesMemberFindings(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	group.Members()[1].SetCallSign("")
	log := &ErrorLog{}
	if group.IsDataValid(log) {
		t.Fatalf("invalid member must fail the group")
	}
	found := false
	for _, m := range log.Messages() {
		if m.Field == "call_sign" {
			found = true
		}
	}
	if !found {
		t.Fatalf("member finding not merged: %v", log.Messages())
	}
}

func TestErrorLogNilSafety(t *testing.T) {
	var log *ErrorLog
	log.Logf("field", "ignored")
	log.Merge(&ErrorLog{})
	if log.HasErrors() || log.Messages() != nil || log.Err() != nil {
		t.Fatalf("nil log must be inert")
	}
}
