package lexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/mylang-front/internal/diag"
	"github.com/standardbeagle/mylang-front/internal/intern"
	"github.com/standardbeagle/mylang-front/internal/source"
)

func newTestLexer(t *testing.T, content string, opts Options) (*Lexer, *diag.Manager) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fm := source.NewFileManager()
	sm := source.NewSourceManager(fm)
	fid, err := sm.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}

	in := intern.New()
	dm := diag.NewManager(sm)
	return New(sm, fid, in, dm, opts), dm
}

func kinds(t *testing.T, lx *Lexer) []Kind {
	t.Helper()
	var out []Kind
	for {
		tok := lx.Next()
		out = append(out, tok.Kind)
		if tok.Kind == EndOfFile {
			break
		}
	}
	return out
}

func assertKinds(t *testing.T, got []Kind, want []Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestEmptyFileIsJustEOF(t *testing.T) {
	lx, dm := newTestLexer(t, "", DefaultOptions())
	tok := lx.Next()
	if tok.Kind != EndOfFile {
		t.Fatalf("expected EndOfFile, got %v", tok.Kind)
	}
	if tok.Location == 0 {
		t.Error("expected a valid location for EOF")
	}
	if dm.Counts() != (diag.Counts{}) {
		t.Errorf("expected zero diagnostics, got %+v", dm.Counts())
	}
}

func TestLetStatement(t *testing.T) {
	lx, _ := newTestLexer(t, "let x = 42;", DefaultOptions())
	got := kinds(t, lx)
	want := []Kind{KwLet, Identifier, Equal, Integer, Semicolon, EndOfFile}
	assertKinds(t, got, want)
}

func TestAtStartOfLineFlag(t *testing.T) {
	lx, _ := newTestLexer(t, "let x = 42;", DefaultOptions())
	first := lx.Next()
	if !first.Flags.Has(AtStartOfLine) {
		t.Error("expected the first token to carry AtStartOfLine")
	}
}

func TestTwoLineIdentifiers(t *testing.T) {
	lx, _ := newTestLexer(t, "a\nb", DefaultOptions())
	first := lx.Next()
	second := lx.Next()
	third := lx.Next()

	if first.Kind != Identifier || second.Kind != Identifier || third.Kind != EndOfFile {
		t.Fatalf("unexpected kinds: %v %v %v", first.Kind, second.Kind, third.Kind)
	}
	if !second.Flags.Has(AtStartOfLine) {
		t.Error("expected token 'b' to carry AtStartOfLine")
	}
}

func TestLineCommentDiscardedByDefault(t *testing.T) {
	lx, _ := newTestLexer(t, "// hi\n1", DefaultOptions())
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{Integer, EndOfFile})
}

func TestLineCommentRetained(t *testing.T) {
	opts := DefaultOptions()
	opts.RetainComments = true
	lx, _ := newTestLexer(t, "// hi\n1", opts)
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{LineComment, Integer, EndOfFile})
}

func TestHexAndBinaryIntegers(t *testing.T) {
	lx, _ := newTestLexer(t, "0xFFu + 0b10", DefaultOptions())
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{Integer, Plus, Integer, EndOfFile})
}

func TestUnterminatedStringProducesExactlyOneDiagnostic(t *testing.T) {
	lx, dm := newTestLexer(t, `"unterminated`, DefaultOptions())
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{String, EndOfFile})
	if dm.Counts().Errors != 1 {
		t.Errorf("expected exactly 1 error, got %+v", dm.Counts())
	}
}

func TestUnexpectedByteProducesUnknownAndDiagnostic(t *testing.T) {
	lx, dm := newTestLexer(t, "\x7f", DefaultOptions())
	tok := lx.Next()
	if tok.Kind != Unknown || tok.Length != 1 {
		t.Fatalf("expected a length-1 Unknown token, got kind=%v length=%d", tok.Kind, tok.Length)
	}
	if dm.Counts().Errors != 1 {
		t.Errorf("expected exactly 1 error diagnostic, got %+v", dm.Counts())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := newTestLexer(t, "a b", DefaultOptions())
	p1 := lx.Peek()
	p2 := lx.Peek()
	if p1.Kind != p2.Kind || p1.Location != p2.Location {
		t.Error("expected repeated Peek to return the same token")
	}
	n := lx.Next()
	if n.Kind != p1.Kind || n.Location != p1.Location {
		t.Error("expected Next after Peek to return the peeked token")
	}
	second := lx.Next()
	if second.Kind != Identifier {
		t.Errorf("expected the second identifier next, got %v", second.Kind)
	}
}

func TestFloatAndOperators(t *testing.T) {
	lx, _ := newTestLexer(t, "1.5 += 2", DefaultOptions())
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{Float, PlusEqual, Integer, EndOfFile})
}

func TestKeywordIdentifierDichotomy(t *testing.T) {
	lx, _ := newTestLexer(t, "function fn foo", DefaultOptions())
	for i := 0; i < 2; i++ {
		tok := lx.Next()
		if tok.Kind != KwFunction {
			t.Errorf("token %d: expected KwFunction for fn/function synonym, got %v", i, tok.Kind)
		}
	}
	identTok := lx.Next()
	if identTok.Kind != Identifier {
		t.Errorf("expected Identifier, got %v", identTok.Kind)
	}
}

func TestBlockCommentUnterminatedReportsDedicatedID(t *testing.T) {
	lx, dm := newTestLexer(t, "/* never closes", DefaultOptions())
	var buf []diag.Diagnostic
	dm.AddConsumer(&captureConsumer{out: &buf})
	got := kinds(t, lx)
	assertKinds(t, got, []Kind{EndOfFile})
	if dm.Counts().Errors != 1 {
		t.Errorf("expected exactly 1 error, got %+v", dm.Counts())
	}
	if len(buf) != 1 || buf[0].ID != diag.UnterminatedBlockComment {
		t.Errorf("expected one UnterminatedBlockComment diagnostic, got %+v", buf)
	}
}

func TestCRLFCollapsesToOneLine(t *testing.T) {
	lx, _ := newTestLexer(t, "a\r\nb", DefaultOptions())
	lx.Next() // a
	second := lx.Next()
	if !second.Flags.Has(AtStartOfLine) {
		t.Error("expected CRLF to advance to a new line exactly once")
	}
}

func TestMisspelledKeywordSuggestsFixIt(t *testing.T) {
	lx, dm := newTestLexer(t, "retrun", DefaultOptions())
	var buf []diag.Diagnostic
	dm.AddConsumer(&captureConsumer{out: &buf})
	lx.Next()
	if len(buf) != 1 {
		t.Fatalf("expected one suggestion diagnostic, got %d", len(buf))
	}
	if buf[0].ID != diag.PossibleMisspelling {
		t.Errorf("expected PossibleMisspelling, got %v", buf[0].ID)
	}
	if len(buf[0].FixIts) != 1 || buf[0].FixIts[0].Replacement != "return" {
		t.Errorf("expected a fix-it suggesting 'return', got %+v", buf[0].FixIts)
	}
}

type captureConsumer struct {
	out *[]diag.Diagnostic
}

func (c *captureConsumer) BeginSourceFile(string)   {}
func (c *captureConsumer) Handle(d diag.Diagnostic) { *c.out = append(*c.out, d) }
func (c *captureConsumer) EndSourceFile()           {}
func (c *captureConsumer) Finish()                  {}
