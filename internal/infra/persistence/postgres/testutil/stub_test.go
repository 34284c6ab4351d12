package testutil

import (
	"context"
	"testing"
)

func TestStubStoresBucketPayloads(t *testing.T) {
	db, conn := NewStubDB()
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO state (bucket, payload) VALUES ($1, $2) ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`, "sources", []byte(`{"1":{}}`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if string(conn.Buckets["sources"]) != `{"1":{}}` {
		t.Fatalf("bucket payload: %q", conn.Buckets["sources"])
	}

	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer func() { _ = rows.Close() }()
	count := 0
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if bucket != "sources" || len(payload) == 0 {
			t.Fatalf("row: %q %q", bucket, payload)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("rows: %d", count)
	}
}

func TestStubFailureFlags(t *testing.T) {
	db, conn := NewStubDB()
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	conn.FailPing = true
	if err := db.PingContext(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
	conn.FailPing = false

	conn.FailQuery = true
	if _, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`); err == nil { //nolint:rowserrcheck
		t.Fatalf("expected query failure")
	}
}
