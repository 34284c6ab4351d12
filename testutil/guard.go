// Package testutil enforces import boundary invariants from package tests.
// The domain model at pkg/domain must stay free of infrastructure imports so
// it can be embedded by tooling without dragging in drivers.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// InternalImportForbidden matches any import path under this module's
// internal tree.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "studycore/internal")
}

// NonStdlibImportForbidden matches any import outside the standard library.
// Paths without a dot in the first segment are treated as stdlib.
func NonStdlibImportForbidden(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return strings.Contains(first, ".")
}

// AssertNoDirectImports parses the non-test .go files in dir and fails when
// any import path satisfies the forbidden predicate.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if forbidden(path) {
				t.Errorf("%s imports %s: %s", name, path, reason)
			}
		}
	}
}

// AssertNoTransitiveDependency loads the package pattern with full dependency
// information and fails when any dependency path satisfies the forbidden
// predicate.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	seen := make(map[string]bool)
	var walk func(p *packages.Package)
	walk = func(p *packages.Package) {
		if seen[p.PkgPath] {
			return
		}
		seen[p.PkgPath] = true
		if forbidden(p.PkgPath) {
			t.Errorf("dependency %s: %s", p.PkgPath, reason)
		}
		for _, dep := range p.Imports {
			walk(dep)
		}
	}
	for _, p := range pkgs {
		for _, dep := range p.Imports {
			walk(dep)
		}
	}
}
