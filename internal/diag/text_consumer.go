package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/mylang-front/internal/source"
)

// ansi holds the escape codes for one level; empty strings mean "no color".
type ansi struct{ prefix, reset string }

var (
	colorNote      = ansi{"\x1b[36m", "\x1b[0m"}   // cyan
	colorWarning   = ansi{"\x1b[33m", "\x1b[0m"}   // yellow
	colorError     = ansi{"\x1b[31m", "\x1b[0m"}   // red
	colorFatal     = ansi{"\x1b[1;31m", "\x1b[0m"} // bold red
	colorHighlight = "\x1b[32m"                    // green, tilde-underlines only
)

func colorFor(l Level) ansi {
	switch l {
	case Note:
		return colorNote
	case Warning:
		return colorWarning
	case Error:
		return colorError
	case Fatal:
		return colorFatal
	default:
		return ansi{}
	}
}

// TextConsumer renders diagnostics as human-readable text: one
// "FILE:LINE:COL: LEVEL: MESSAGE" line, the offending source line, a caret
// plus tilde-underlines for any highlight ranges on that line, and
// fix-it suggestions.
type TextConsumer struct {
	w     io.Writer
	sm    *source.SourceManager
	Color bool
}

// NewTextConsumer writes to w, resolving locations through sm. sm may be
// nil, in which case every location renders as "<unknown>" with no source
// line.
func NewTextConsumer(w io.Writer, sm *source.SourceManager) *TextConsumer {
	return &TextConsumer{w: w, sm: sm}
}

func (t *TextConsumer) BeginSourceFile(path string) {}
func (t *TextConsumer) EndSourceFile()               {}
func (t *TextConsumer) Finish()                      {}

func (t *TextConsumer) Handle(d Diagnostic) {
	c := colorFor(d.Level)
	prefix, reset := "", ""
	if t.Color {
		prefix, reset = c.prefix, c.reset
	}

	loc := t.locate(d.Location)
	fmt.Fprintf(t.w, "%s:%d:%d: %s%s%s: %s\n", loc.file, loc.line, loc.col, prefix, d.Level, reset, d.Message())

	if t.sm != nil && loc.fid.IsValid() {
		t.writeSourceContext(d, loc)
	}

	for _, fx := range d.FixIts {
		fmt.Fprintf(t.w, "  fix-it: replace with '%s'\n", fx.Replacement)
	}
}

type resolvedLoc struct {
	fid  source.FileID
	file string
	line int
	col  int
}

func (t *TextConsumer) locate(loc source.Location) resolvedLoc {
	if t.sm == nil || !loc.IsValid() {
		return resolvedLoc{file: "<unknown>"}
	}
	fid := t.sm.FileID(loc)
	if !fid.IsValid() {
		return resolvedLoc{file: "<unknown>"}
	}
	line, col := t.sm.LineAndColumn(loc)
	return resolvedLoc{fid: fid, file: t.sm.Filename(loc), line: line, col: col}
}

func (t *TextConsumer) writeSourceContext(d Diagnostic, loc resolvedLoc) {
	lineStart := t.sm.LineStartLoc(loc.fid, loc.line)
	lineText := t.sm.LineText(loc.fid, loc.line)
	fmt.Fprintln(t.w, string(lineText))

	marks := make([]byte, len(lineText))
	for i := range marks {
		marks[i] = ' '
	}
	for _, r := range d.Ranges {
		markRange(t.sm, loc.fid, lineStart, marks, r, '~')
	}
	if loc.col-1 >= 0 && loc.col-1 < len(marks) {
		marks[loc.col-1] = '^'
	} else if len(marks) == 0 {
		marks = []byte{'^'}
	}
	line := strings.TrimRight(string(marks), " ")
	if t.Color {
		line = colorHighlight + line + "\x1b[0m"
	}
	fmt.Fprintln(t.w, line)
}

func markRange(sm *source.SourceManager, fid source.FileID, lineStart source.Location, marks []byte, r source.Range, ch byte) {
	if sm.FileID(r.Begin) != fid {
		return
	}
	begin := int(r.Begin - lineStart)
	end := int(r.End - lineStart)
	if begin < 0 {
		begin = 0
	}
	if end > len(marks) {
		end = len(marks)
	}
	for i := begin; i < end; i++ {
		marks[i] = ch
	}
}
