package core

import (
	"context"
	"testing"

	"studycore/pkg/domain"
)

func mustService(t *testing.T, key int) domain.ServiceType {
	t.Helper()
	service, ok := domain.ServiceForKey(key)
	if !ok {
		t.Fatalf("service catalog missing key %d", key)
	}
	return service
}

func mustCountry(t *testing.T, key int) domain.Country {
	t.Helper()
	country, ok := domain.CountryForKey(key)
	if !ok {
		t.Fatalf("country catalog missing key %d", key)
	}
	return country
}

func createTestStudy(t *testing.T, svc *Service) Study {
	t.Helper()
	study, _, err := svc.CreateStudy(context.Background(), Study{Name: "coverage"})
	if err != nil {
		t.Fatalf("create study: %v", err)
	}
	return study
}

// createTestSource builds, populates, and saves a flat digital source under
// the given study, returning its key.
func createTestSource(t *testing.T, svc *Service, studyKey int) int {
	t.Helper()
	sctx, err := svc.OpenStudyContext(studyKey)
	if err != nil {
		t.Fatalf("open study context: %v", err)
	}
	service := mustService(t, domain.ServiceKeyDTV)
	rec, err := domain.CreateNewRecord(sctx, 1001, service, mustCountry(t, domain.CountryKeyUS), false)
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	err = rec.ApplyFields(domain.RecordFields{
		CallSign: "WXYZ", Channel: 30, City: "Columbia", State: "MD",
		PeakERP: 1000, Latitude: 39.2, Longitude: -76.8,
		HeightAMSL: 300, OverallHAAT: 250, AntennaID: 42,
		SignalType: domain.DefaultSignalType(service), EmissionMask: domain.DefaultEmissionMask(service),
	})
	if err != nil {
		t.Fatalf("apply fields: %v", err)
	}
	if _, err := svc.SaveSource(context.Background(), rec); err != nil {
		t.Fatalf("save source: %v", err)
	}
	return rec.Key
}
