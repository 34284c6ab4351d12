package core

import (
	"path/filepath"
	"testing"

	"studycore/internal/infra/persistence/memory"
	"studycore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreDefaultSQLite(t *testing.T) {
	t.Setenv("STUDYCORE_STORAGE_DRIVER", "")
	t.Setenv("STUDYCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "default.db"))
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected *sqlite.Store, got %T", store)
	}
	_ = s.Close()
}

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("STUDYCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", store)
	}
}

func TestOpenPersistentStoreCustomSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("STUDYCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("STUDYCORE_SQLITE_PATH", path)
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected *sqlite.Store, got %T", store)
	}
	if s.Path() != path {
		t.Fatalf("expected path %s, got %s", path, s.Path())
	}
	_ = s.Close()
}

func TestOpenPersistentStorePostgresUnreachable(t *testing.T) {
	t.Setenv("STUDYCORE_STORAGE_DRIVER", "postgres")
	t.Setenv("STUDYCORE_POSTGRES_DSN", "postgres://postgres@127.0.0.1:1/studycore?sslmode=disable&connect_timeout=1")
	if _, err := OpenPersistentStore(NewDefaultRulesEngine()); err == nil {
		t.Fatalf("expected error for unreachable postgres")
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("STUDYCORE_STORAGE_DRIVER", "gibberish")
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err == nil || store != nil {
		t.Fatalf("expected error for unknown driver, got store=%v err=%v", store, err)
	}
}
