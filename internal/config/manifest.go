package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is a project's package metadata, read from mylang.toml at the
// project root. Unlike .mylang.kdl (toolchain tuning), the manifest
// describes the package itself: what it's called and where it starts.
//
// Grounded on the teacher's build_artifact_detector.go, which already
// parses third-party TOML manifests (Cargo.toml, pyproject.toml) with
// go-toml/v2 — repurposed here to parse the toolchain's own manifest
// format instead of a foreign one.
type Manifest struct {
	Package PackageMeta `toml:"package"`
}

// PackageMeta is the [package] table of mylang.toml.
type PackageMeta struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Entry   string `toml:"entry"` // path to the entry source file, relative to the manifest
}

// LoadManifest reads and parses root/mylang.toml. It returns (nil, nil)
// when no manifest is present — a bare file or directory is still a valid
// thing to lex.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, "mylang.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mylang.toml: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mylang.toml: %w", err)
	}
	return &m, nil
}

// EntryPath resolves the manifest's entry file to an absolute path rooted
// at root, defaulting to main.ml when m is nil or names none.
func (m *Manifest) EntryPath(root string) string {
	entry := ""
	if m != nil {
		entry = m.Package.Entry
	}
	if entry == "" {
		entry = "main.ml"
	}
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(root, entry)
}
