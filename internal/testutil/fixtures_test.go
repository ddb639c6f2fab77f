package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFixturePathResolvesFromModuleRoot(t *testing.T) {
	path := FixturePath("small.ifc")
	if !filepath.IsAbs(path) {
		t.Fatalf("expected absolute path, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixture missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(path)))), "go.mod")); err != nil {
		t.Fatalf("expected fixture under module root: %v", err)
	}
}

func TestCopyFixture(t *testing.T) {
	dir := t.TempDir()
	path := CopyFixture(t, "small.ifc", dir, "copy.ifc")
	if path != filepath.Join(dir, "copy.ifc") {
		t.Fatalf("unexpected copy path %s", path)
	}
	want, err := os.ReadFile(FixturePath("small.ifc"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Fatalf("copy differs from fixture")
	}
}
