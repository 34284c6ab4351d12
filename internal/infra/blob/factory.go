// Package blob selects a pattern payload store from process environment.
package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	"studycore/internal/blob/core"
	"studycore/internal/infra/blob/fs"
	"studycore/internal/infra/blob/memory"
	"studycore/internal/infra/blob/s3"
)

// Environment variables:
//
//	STUDYCORE_BLOB_DRIVER   (memory|fs|s3, default fs)
//	STUDYCORE_BLOB_FS_ROOT  (fs driver root, default "patterns")
//
// The s3 driver reads its own STUDYCORE_BLOB_S3_* variables.
const (
	EnvDriver = "STUDYCORE_BLOB_DRIVER"
	EnvFSRoot = "STUDYCORE_BLOB_FS_ROOT"

	defaultFSRoot = "patterns"
)

// Open constructs the configured blob store.
func Open(ctx context.Context) (core.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDriver)))
	if driver == "" {
		driver = string(core.DriverFS)
	}
	switch core.Driver(driver) {
	case core.DriverMemory:
		return memory.NewStore(), nil
	case core.DriverFS:
		root := os.Getenv(EnvFSRoot)
		if root == "" {
			root = defaultFSRoot
		}
		return fs.NewStore(root)
	case core.DriverS3:
		return s3.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
