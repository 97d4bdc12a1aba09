package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig("/tmp/proj")
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Arena.BlockSize == 0 {
		t.Error("expected a nonzero arena block size")
	}
}

func TestLoadWithRootFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadWithRoot(dir, dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Diag.Format != "text" {
		t.Errorf("expected default diag format 'text', got %q", cfg.Diag.Format)
	}
}

func TestLoadWithRootReadsProjectKDL(t *testing.T) {
	dir := t.TempDir()
	kdl := `
project {
    name "demo"
}
diagnostics {
    max_errors 5
    format "json"
}
lexer {
    retain_comments true
}
`
	if err := os.WriteFile(filepath.Join(dir, ".mylang.kdl"), []byte(kdl), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithRoot(dir, dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.Name != "demo" {
		t.Errorf("expected project name 'demo', got %q", cfg.Project.Name)
	}
	if cfg.Diag.MaxErrors != 5 {
		t.Errorf("expected MaxErrors 5, got %d", cfg.Diag.MaxErrors)
	}
	if cfg.Diag.Format != "json" {
		t.Errorf("expected Format 'json', got %q", cfg.Diag.Format)
	}
	if !cfg.Lexer.RetainComments {
		t.Error("expected RetainComments true")
	}
}

func TestMergeConfigsUnionsExclusions(t *testing.T) {
	base := DefaultConfig("/base")
	base.Exclude = []string{"**/a/**", "**/b/**"}
	project := DefaultConfig("/proj")
	project.Exclude = []string{"**/b/**", "**/c/**"}

	merged := mergeConfigs(base, project)
	seen := map[string]bool{}
	for _, p := range merged.Exclude {
		seen[p] = true
	}
	for _, want := range []string{"**/a/**", "**/b/**", "**/c/**"} {
		if !seen[want] {
			t.Errorf("expected merged exclusions to contain %q, got %v", want, merged.Exclude)
		}
	}
}

func TestDiscoverSourceFilesRespectsIncludeAndExclude(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "main.ml"), "let x = 1;")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "hello")
	mustMkdir(t, filepath.Join(dir, "vendor"))
	mustWrite(t, filepath.Join(dir, "vendor", "dep.ml"), "let y = 2;")

	cfg := DefaultConfig(dir)
	cfg.Exclude = append(cfg.Exclude, "**/vendor/**")

	files, err := cfg.DiscoverSourceFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected exactly 1 discovered file, got %v", files)
	}
	if filepath.Base(files[0]) != "main.ml" {
		t.Errorf("expected main.ml, got %s", files[0])
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
}
