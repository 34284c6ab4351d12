package testutil

import "testing"

func TestInternalImportForbidden(t *testing.T) {
	cases := map[string]bool{
		"studycore/internal/core": true,
		"studycore/pkg/domain":    false,
		"context":                 false,
	}
	for path, want := range cases {
		if got := InternalImportForbidden(path); got != want {
			t.Errorf("InternalImportForbidden(%q) = %v", path, got)
		}
	}
}

func TestNonStdlibImportForbidden(t *testing.T) {
	cases := map[string]bool{
		"context":                        false,
		"encoding/json":                  false,
		"go.uber.org/zap":                true,
		"github.com/jackc/pgx/v5/stdlib": true,
		"golang.org/x/tools/go/packages": true,
	}
	for path, want := range cases {
		if got := NonStdlibImportForbidden(path); got != want {
			t.Errorf("NonStdlibImportForbidden(%q) = %v", path, got)
		}
	}
}

func TestAssertNoDirectImportsOnSelf(t *testing.T) {
	// This package imports x/tools, so the internal predicate must pass and
	// the stdlib-only predicate must not be applied here. Exercise the
	// passing path against the package's own directory.
	AssertNoDirectImports(t, ".", InternalImportForbidden, "testutil must not depend on internal packages")
}
