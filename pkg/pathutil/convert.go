// Package pathutil provides utilities for converting between absolute and
// relative paths, and for canonicalizing paths the way the FileManager's
// cache key requires.
//
// Architecture Pattern:
// The front end uses absolute, symlink-resolved paths internally for
// consistency and to avoid ambiguity (two relative paths to the same file
// must canonicalize to the same cache key). Diagnostic output should use
// relative paths for readability and portability. This package provides
// the conversion layer between internal (canonical) and external
// (relative) representations.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute.
		return absPath
	}

	// A ".."-prefixed relative path means the file is outside root; the
	// absolute path is clearer in that case.
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// Canonicalize resolves path to an absolute, symlink-free form suitable for
// use as a FileManager cache key: two different spellings of the same file
// (relative vs. absolute, or crossing a symlink) canonicalize identically.
//
// If the path does not exist, symlink resolution is skipped and only
// filepath.Abs + filepath.Clean are applied, so callers can still
// canonicalize paths for files that are about to be created.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Missing file, permission error, etc: fall back to the
		// non-resolved absolute path rather than failing outright.
		return abs, nil
	}
	return resolved, nil
}
