// Package testutil locates the IFC fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturePath returns the absolute path of a file under internal/ifc/testdata.
func FixturePath(name string) string {
	return filepath.Join(repoRoot(), "internal", "ifc", "testdata", name)
}

// CopyFixture copies a fixture into dir under newName and returns its path.
func CopyFixture(t *testing.T, name, dir, newName string) string {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	path := filepath.Join(dir, newName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture copy %s: %v", path, err)
	}
	return path
}

func repoRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		dir, _ := os.Getwd()
		return findModuleRoot(dir)
	}
	return findModuleRoot(filepath.Dir(file))
}

func findModuleRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
