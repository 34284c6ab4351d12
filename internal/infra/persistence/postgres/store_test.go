package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"studycore/internal/infra/persistence/memory"
	"studycore/internal/infra/persistence/postgres/testutil"
	"studycore/pkg/domain"
)

func seedRecord(t *testing.T, key, studyKey int) domain.Record {
	t.Helper()
	service, ok := domain.ServiceForKey(domain.ServiceKeyDTV)
	if !ok {
		t.Fatalf("service catalog missing DTV")
	}
	country, ok := domain.CountryForKey(domain.CountryKeyUS)
	if !ok {
		t.Fatalf("country catalog missing US")
	}
	ctx := domain.NewStudyContext(domain.Study{Key: studyKey}, domain.NewSequentialKeys(key))
	r, err := domain.CreateNewRecord(ctx, 1001, service, country, false)
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	err = r.ApplyFields(domain.RecordFields{
		CallSign: "WXYZ", Channel: 30, City: "Columbia", State: "MD",
		PeakERP: 1000, Latitude: 39.2, Longitude: -76.8,
		SignalType: domain.DefaultSignalType(service), EmissionMask: domain.DefaultEmissionMask(service),
	})
	if err != nil {
		t.Fatalf("apply fields: %v", err)
	}
	return r.FlatCopy()
}

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, conn
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	_, conn := newStubStore(t)
	sawDDL := false
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestCommitPersistsBuckets(t *testing.T) {
	store, conn := newStubStore(t)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.PutStudy(domain.Study{Key: 1, Name: "coverage"}); err != nil {
			return err
		}
		_, err := tx.PutSource(seedRecord(t, 10, 1))
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var sources map[int]domain.Record
	if err := json.Unmarshal(conn.Buckets["sources"], &sources); err != nil {
		t.Fatalf("decode sources bucket: %v", err)
	}
	if got := sources[10].CallSign; got != "WXYZ" {
		t.Fatalf("persisted call sign: %q", got)
	}
	if len(conn.Buckets["studies"]) == 0 {
		t.Fatalf("studies bucket not persisted")
	}
}

func TestNewStoreLoadsPersistedSnapshot(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	row := seedRecord(t, 10, 1)
	snapshot := memory.Snapshot{
		Sources: map[int]domain.Record{10: row},
		Studies: map[int]domain.Study{1: {Key: 1, Name: "coverage"}},
	}
	var err error
	if conn.Buckets["sources"], err = json.Marshal(snapshot.Sources); err != nil {
		t.Fatalf("encode sources: %v", err)
	}
	if conn.Buckets["studies"], err = json.Marshal(snapshot.Studies); err != nil {
		t.Fatalf("encode studies: %v", err)
	}

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	got, ok := store.GetSource(10)
	if !ok || got.CallSign != "WXYZ" {
		t.Fatalf("loaded source: %v %+v", ok, got)
	}
	if _, ok := store.GetStudy(1); !ok {
		t.Fatalf("loaded study missing")
	}
}

func TestRollbackSkipsPersist(t *testing.T) {
	store, conn := newStubStore(t)
	sentinel := errors.New("abort")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.PutSource(seedRecord(t, 10, 0)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if len(conn.Buckets) != 0 {
		t.Fatalf("aborted write reached buckets: %v", conn.Buckets)
	}
}

func TestPersistCommitFailureSurfaces(t *testing.T) {
	store, conn := newStubStore(t)
	conn.FailCommit = true
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.PutSource(seedRecord(t, 10, 0))
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "commit persist") {
		t.Fatalf("expected commit failure, got %v", err)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}
