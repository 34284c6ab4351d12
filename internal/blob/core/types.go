// Package core defines the storage contract for antenna pattern payloads.
// Pattern tables are large relative to the rest of a record and are kept out
// of the relational state buckets; drivers store them as addressable objects
// instead. Implementations live under internal/infra/blob.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver names a concrete object store backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
)

// ErrUnsupported is returned by capability methods a backend cannot honor,
// such as presigning URLs on the in-memory driver.
var ErrUnsupported = errors.New("blob: operation not supported by driver")

// ErrNotFound is returned when no object exists under the requested key.
var ErrNotFound = errors.New("blob: object not found")

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	Metadata     map[string]string
	LastModified time.Time
	// URL is a driver-local address for the object when the backend has
	// one. It is informational and not necessarily fetchable.
	URL string
}

// PutOptions carries optional attributes recorded alongside a payload.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions controls PresignURL. A zero Expiry selects the driver
// default.
type SignedURLOptions struct {
	Expiry time.Duration
}

// Store is the object storage surface pattern persistence is written
// against. Put replaces any existing object under the same key; pattern
// slots are rewritten whole on every save, so create-only semantics would
// only get in the way.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, Info, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}
