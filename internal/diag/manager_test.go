package diag

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/mylang-front/internal/source"
)

func testManager(t *testing.T) (*Manager, *source.SourceManager, source.FileID) {
	t.Helper()
	dir := t.TempDir()
	fm := source.NewFileManager()
	sm := source.NewSourceManager(fm)

	path := filepath.Join(dir, "a.ml")
	if err := os.WriteFile(path, []byte(`"unterminated`), 0o644); err != nil {
		t.Fatal(err)
	}
	fid, err := sm.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(sm), sm, fid
}

func TestReportDispatchesToConsumers(t *testing.T) {
	m, sm, fid := testManager(t)
	var buf bytes.Buffer
	m.AddConsumer(NewTextConsumer(&buf, sm))

	loc := sm.StartLoc(fid)
	m.Report(Diagnostic{ID: UnterminatedStringLiteral, Location: loc})

	out := buf.String()
	if !strings.Contains(out, "unterminated string literal") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, ":1:1:") {
		t.Errorf("expected line:column prefix, got %q", out)
	}
}

func TestWarningsAsErrorsPromotion(t *testing.T) {
	m, _, _ := testManager(t)
	m.SetWarningsAsErrors(true)

	// UnexpectedValue is Error-level already; promotion is only observable
	// through the counters, so assert the pipeline doesn't double count.
	m.Report(Diagnostic{ID: UnexpectedValue, Args: []string{"an operator", "@"}})
	if m.Counts().Errors != 1 {
		t.Errorf("expected 1 error, got %+v", m.Counts())
	}
}

func TestMaxErrorsCapsDispatchButNotCounting(t *testing.T) {
	m, _, _ := testManager(t)
	var buf bytes.Buffer
	m.AddConsumer(NewTextConsumer(&buf, nil))
	m.SetMaxErrors(1)

	m.Report(Diagnostic{ID: UnexpectedValue, Args: []string{"x", "y"}})
	m.Report(Diagnostic{ID: UnexpectedValue, Args: []string{"x", "y"}})
	m.Report(Diagnostic{ID: UnexpectedValue, Args: []string{"x", "y"}})

	if m.Counts().Errors != 3 {
		t.Errorf("expected counting to continue past the cap, got %d", m.Counts().Errors)
	}
	n := strings.Count(buf.String(), "unexpected character")
	if n != 1 {
		t.Errorf("expected exactly 1 dispatched diagnostic past a cap of 1, got %d", n)
	}
}

func TestShouldContinueFalseAfterFatal(t *testing.T) {
	m, _, _ := testManager(t)
	if !m.ShouldContinue() {
		t.Fatal("expected ShouldContinue() true before any report")
	}
	m.Report(Diagnostic{ID: InvalidID})
	if m.ShouldContinue() {
		t.Error("expected ShouldContinue() false after a Fatal diagnostic")
	}
}

func TestResetClearsCountersAndFatalLatch(t *testing.T) {
	m, _, _ := testManager(t)
	m.Report(Diagnostic{ID: InvalidID})
	m.Reset()
	if !m.ShouldContinue() {
		t.Error("expected ShouldContinue() true after Reset")
	}
	if m.Counts() != (Counts{}) {
		t.Errorf("expected zeroed counts after Reset, got %+v", m.Counts())
	}
}

func TestSuppressScopeRestoresPriorSettings(t *testing.T) {
	m, _, _ := testManager(t)
	m.SetSuppressWarnings(false)

	scope := m.SuppressScope()
	var buf bytes.Buffer
	m.AddConsumer(NewTextConsumer(&buf, nil))
	// Notes are suppressed during the scope.
	m.Report(Diagnostic{ID: UnterminatedBlockComment})
	scope.Restore()

	if buf.Len() == 0 {
		t.Error("expected the error-level diagnostic to still dispatch inside the scope")
	}
	if m.suppressWarnings || m.suppressNotes {
		t.Errorf("expected Restore to put back the prior settings, got suppressWarnings=%v suppressNotes=%v", m.suppressWarnings, m.suppressNotes)
	}
}

func TestJSONConsumerEmitsDiagnosticsArray(t *testing.T) {
	m, sm, fid := testManager(t)
	var buf bytes.Buffer
	m.AddConsumer(NewJSONConsumer(&buf, sm))

	m.BeginSourceFile(sm.Filename(sm.StartLoc(fid)))
	m.Report(Diagnostic{ID: UnterminatedStringLiteral, Location: sm.StartLoc(fid)})
	m.EndSourceFile()

	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if len(doc.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(doc.Diagnostics))
	}
	d := doc.Diagnostics[0]
	if d.Location == nil || d.Location.Line != 1 || d.Location.Column != 1 {
		t.Errorf("expected location 1:1, got %+v", d.Location)
	}
}

func TestMessageSubstitutesArgs(t *testing.T) {
	d := Diagnostic{ID: UnexpectedValue, Args: []string{"an operator", "'@'"}}
	got := d.Message()
	want := "expected an operator, found '@'"
	if got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}
