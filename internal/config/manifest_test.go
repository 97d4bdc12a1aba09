package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestMissingIsNil(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("expected nil manifest for a directory with no mylang.toml, got %+v", m)
	}
}

func TestLoadManifestParsesPackageTable(t *testing.T) {
	dir := t.TempDir()
	content := `
[package]
name = "demo"
version = "0.1.0"
entry = "src/main.ml"
`
	if err := os.WriteFile(filepath.Join(dir, "mylang.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Package.Name != "demo" || m.Package.Version != "0.1.0" {
		t.Errorf("unexpected package metadata: %+v", m.Package)
	}
	want := filepath.Join(dir, "src/main.ml")
	if got := m.EntryPath(dir); got != want {
		t.Errorf("expected entry path %q, got %q", want, got)
	}
}

func TestEntryPathDefaultsWhenNilOrEmpty(t *testing.T) {
	var m *Manifest
	if got, want := m.EntryPath("/proj"), filepath.Join("/proj", "main.ml"); got != want {
		t.Errorf("expected %q for nil manifest, got %q", want, got)
	}

	empty := &Manifest{}
	if got, want := empty.EntryPath("/proj"), filepath.Join("/proj", "main.ml"); got != want {
		t.Errorf("expected %q for manifest with no entry set, got %q", want, got)
	}
}
