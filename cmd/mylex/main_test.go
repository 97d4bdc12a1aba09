package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/mylang-front/internal/config"
)

func TestLexFileReportsNoErrorsForValidSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ml")
	if err := os.WriteFile(path, []byte("let x = 1 + 2;"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig(dir)
	p := newPipeline(cfg)
	if err := p.lexFile(path, false); err != nil {
		t.Fatalf("unexpected error lexing a valid file: %v", err)
	}
	if err := exitIfErrors(p.dm); err != nil {
		t.Errorf("expected no diagnostics for valid source, got %v", err)
	}
}

func TestLexFileReportsErrorForUnterminatedString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ml")
	if err := os.WriteFile(path, []byte(`let x = "oops`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig(dir)
	p := newPipeline(cfg)
	if err := p.lexFile(path, false); err != nil {
		t.Fatalf("lexFile itself should not fail: %v", err)
	}
	if err := exitIfErrors(p.dm); err == nil {
		t.Error("expected an error to be reported for an unterminated string literal")
	}
}
