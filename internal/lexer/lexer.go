package lexer

import (
	"fmt"

	"github.com/standardbeagle/mylang-front/internal/diag"
	"github.com/standardbeagle/mylang-front/internal/intern"
	"github.com/standardbeagle/mylang-front/internal/source"
)

// Lexer scans one file's bytes (obtained through a SourceManager) into a
// lazy token stream. It is not safe for concurrent use by multiple
// goroutines — spec.md §5 scopes the lexer to single-threaded use per
// instance, like the arena it often sits alongside.
//
// Grounded on the teacher's LineScanner (internal/core/line_scanner.go)
// for its zero-allocation, single-pass byte scanning style, generalized
// here from whole-line iteration to byte-at-a-time token classification.
type Lexer struct {
	sm       *source.SourceManager
	fid      source.FileID
	interner *intern.Interner
	diags    *diag.Manager
	opts     Options

	data []byte // this file's full content, fetched once at construction
	pos  int     // current byte offset within data

	line      int
	lineStart int // byte offset at which the current line begins

	peeked *Token
	stats  *statsCounters
}

// New creates a Lexer over fid's content, registered with sm. interner is
// used to intern identifier/literal spellings; diags receives lexical
// error reports.
func New(sm *source.SourceManager, fid source.FileID, interner *intern.Interner, diags *diag.Manager, opts Options) *Lexer {
	data := sm.SourceText(sm.StartLoc(fid), sm.EndLoc(fid))
	return &Lexer{
		sm:       sm,
		fid:      fid,
		interner: interner,
		diags:    diags,
		opts:     opts,
		data:     data,
		line:     1,
		stats:    newStatsCounters(),
	}
}

// Stats returns a snapshot of this lexer's counters.
func (lx *Lexer) Stats() Stats {
	return lx.stats.snapshot()
}

// Next returns the next token, consuming any buffered Peek result first.
func (lx *Lexer) Next() Token {
	if lx.peeked != nil {
		t := *lx.peeked
		lx.peeked = nil
		return t
	}
	return lx.scan()
}

// Peek returns the next token without consuming it. At most one token is
// ever buffered; a second Peek before the intervening Next returns the
// same buffered token.
func (lx *Lexer) Peek() Token {
	if lx.peeked == nil {
		t := lx.scan()
		lx.peeked = &t
	}
	return *lx.peeked
}

func (lx *Lexer) curByte() byte       { return lx.byteAt(lx.pos) }
func (lx *Lexer) peekByte(n int) byte { return lx.byteAt(lx.pos + n) }
func (lx *Lexer) byteAt(i int) byte {
	if i < 0 || i >= len(lx.data) {
		return 0
	}
	return lx.data[i]
}

func (lx *Lexer) locAt(offset int) source.Location {
	return lx.sm.LocForFileOffset(lx.fid, offset)
}

// consumeNewline advances past one logical newline (LF, CR, or CR LF,
// which collapses to a single line increment), updating line/lineStart.
func (lx *Lexer) consumeNewline() {
	if lx.data[lx.pos] == '\r' && lx.peekByte(1) == '\n' {
		lx.pos += 2
	} else {
		lx.pos++
	}
	lx.line++
	lx.lineStart = lx.pos
	lx.stats.lines.Add(1)
}

// scan is the core dispatch loop: it skips (or emits, when retained)
// trivia, then classifies the next substantive token.
func (lx *Lexer) scan() Token {
	atStart := lx.pos == lx.lineStart
	hadSpace := false

	for {
		if lx.pos >= len(lx.data) {
			return lx.makeEOF(atStart)
		}
		b := lx.data[lx.pos]

		switch {
		case isNewlineByte(b):
			if lx.opts.RetainWhitespace {
				return lx.scanNewlineToken(atStart)
			}
			lx.consumeNewline()
			atStart = true
			hadSpace = false

		case isSpace(b):
			if lx.opts.RetainWhitespace {
				return lx.scanWhitespaceRun(atStart)
			}
			for isSpace(lx.curByte()) {
				lx.pos++
			}
			hadSpace = true

		case b == '/' && lx.peekByte(1) == '/':
			if lx.opts.RetainComments {
				return lx.scanLineComment(atStart, hadSpace)
			}
			lx.skipLineComment()
			hadSpace = false

		case b == '/' && lx.peekByte(1) == '*':
			if lx.opts.RetainComments {
				return lx.scanBlockComment(atStart, hadSpace)
			}
			start := lx.pos
			if !lx.consumeBlockCommentBody() {
				lx.reportUnterminated(diag.UnterminatedBlockComment, lx.locAt(start))
			}
			hadSpace = false

		default:
			return lx.scanSubstantive(atStart, hadSpace)
		}
	}
}

func (lx *Lexer) makeEOF(atStart bool) Token {
	flags := Flags(0)
	if atStart {
		flags |= AtStartOfLine
	}
	lx.stats.recordKind(EndOfFile)
	return Token{Kind: EndOfFile, Location: lx.locAt(lx.pos), Flags: flags}
}

func (lx *Lexer) scanWhitespaceRun(atStart bool) Token {
	start := lx.pos
	for isSpace(lx.curByte()) {
		lx.pos++
	}
	length := lx.pos - start
	lx.stats.charactersProcessed.Add(int64(length))

	flags := Flags(0)
	if atStart {
		flags |= AtStartOfLine
	}
	lx.stats.recordKind(Whitespace)
	return Token{Kind: Whitespace, Location: lx.locAt(start), Length: length, Flags: flags}
}

func (lx *Lexer) scanNewlineToken(atStart bool) Token {
	start := lx.pos
	lx.consumeNewline()
	length := lx.pos - start

	flags := Flags(0)
	if atStart {
		flags |= AtStartOfLine
	}
	lx.stats.recordKind(Newline)
	return Token{Kind: Newline, Location: lx.locAt(start), Length: length, Flags: flags}
}

func (lx *Lexer) skipLineComment() {
	lx.pos += 2
	for lx.pos < len(lx.data) && !isNewlineByte(lx.data[lx.pos]) {
		lx.pos++
	}
}

func (lx *Lexer) scanLineComment(atStart, hadSpace bool) Token {
	start := lx.pos
	lx.skipLineComment()
	length := lx.pos - start

	flags := Flags(0)
	if atStart {
		flags |= AtStartOfLine
	}
	if hadSpace {
		flags |= HasLeadingSpace
	}
	lx.stats.commentsEmitted.Add(1)
	lx.stats.recordKind(LineComment)
	text := lx.interner.Intern(lx.data[start:lx.pos])
	return Token{Kind: LineComment, Location: lx.locAt(start), Length: length, Flags: flags, Text: text}
}

// consumeBlockCommentBody consumes "/*" through a matching "*/",
// advancing the line counter for any newlines inside. Returns false if
// EOF is reached first.
func (lx *Lexer) consumeBlockCommentBody() bool {
	lx.pos += 2
	for {
		if lx.pos >= len(lx.data) {
			return false
		}
		b := lx.data[lx.pos]
		if b == '*' && lx.peekByte(1) == '/' {
			lx.pos += 2
			return true
		}
		if isNewlineByte(b) {
			lx.consumeNewline()
			continue
		}
		lx.pos++
	}
}

func (lx *Lexer) scanBlockComment(atStart, hadSpace bool) Token {
	start := lx.pos
	if !lx.consumeBlockCommentBody() {
		lx.reportUnterminated(diag.UnterminatedBlockComment, lx.locAt(start))
	}
	length := lx.pos - start

	flags := Flags(0)
	if atStart {
		flags |= AtStartOfLine
	}
	if hadSpace {
		flags |= HasLeadingSpace
	}
	lx.stats.commentsEmitted.Add(1)
	lx.stats.recordKind(BlockComment)
	text := lx.interner.Intern(lx.data[start:lx.pos])
	return Token{Kind: BlockComment, Location: lx.locAt(start), Length: length, Flags: flags, Text: text}
}

func (lx *Lexer) scanNumber() (Kind, int) {
	start := lx.pos
	if lx.curByte() == '0' {
		switch lx.peekByte(1) {
		case 'x', 'X':
			lx.pos += 2
			for isHexDigit(lx.curByte()) {
				lx.pos++
			}
			lx.consumeSuffix()
			return Integer, lx.pos - start
		case 'b', 'B':
			lx.pos += 2
			for isBinaryDigit(lx.curByte()) {
				lx.pos++
			}
			lx.consumeSuffix()
			return Integer, lx.pos - start
		}
	}

	for isDigit(lx.curByte()) {
		lx.pos++
	}

	if lx.curByte() == '.' && isDigit(lx.peekByte(1)) {
		lx.pos++
		for isDigit(lx.curByte()) {
			lx.pos++
		}
		lx.consumeExponent()
		lx.consumeSuffix()
		return Float, lx.pos - start
	}

	lx.consumeSuffix()
	return Integer, lx.pos - start
}

func (lx *Lexer) consumeExponent() {
	b := lx.curByte()
	if b != 'e' && b != 'E' {
		return
	}
	p := lx.pos + 1
	if lx.byteAt(p) == '+' || lx.byteAt(p) == '-' {
		p++
	}
	if !isDigit(lx.byteAt(p)) {
		return
	}
	lx.pos = p
	for isDigit(lx.curByte()) {
		lx.pos++
	}
}

func (lx *Lexer) consumeSuffix() {
	for isAlpha(lx.curByte()) {
		lx.pos++
	}
}

// scanString scans a "..." literal starting at the opening quote.
// Returns the token length and whether any escape was present.
func (lx *Lexer) scanString() (int, Flags) {
	start := lx.pos
	lx.pos++
	flags := Flags(0)

	for {
		if lx.pos >= len(lx.data) {
			lx.reportUnterminated(diag.UnterminatedStringLiteral, lx.locAt(start))
			break
		}
		b := lx.data[lx.pos]
		if isNewlineByte(b) {
			lx.reportUnterminated(diag.UnterminatedStringLiteral, lx.locAt(start))
			break
		}
		if b == '"' {
			lx.pos++
			break
		}
		if b == '\\' {
			flags |= NeedsCleaning
			lx.pos++
			if lx.pos < len(lx.data) {
				lx.pos++
			}
			continue
		}
		lx.pos++
	}
	return lx.pos - start, flags
}

// scanChar scans a '...' literal expecting exactly one logical character.
func (lx *Lexer) scanChar() (int, Flags) {
	start := lx.pos
	lx.pos++
	flags := Flags(0)

	if lx.pos < len(lx.data) && lx.data[lx.pos] == '\\' {
		flags |= NeedsCleaning
		lx.pos++
		if lx.pos < len(lx.data) {
			lx.pos++
		}
	} else if lx.pos < len(lx.data) && !isNewlineByte(lx.data[lx.pos]) && lx.data[lx.pos] != '\'' {
		lx.pos++
	}

	if lx.pos < len(lx.data) && lx.data[lx.pos] == '\'' {
		lx.pos++
	} else {
		lx.reportUnterminated(diag.UnterminatedCharacterLiteral, lx.locAt(start))
	}
	return lx.pos - start, flags
}

func (lx *Lexer) scanSubstantive(atStart, hadSpace bool) Token {
	start := lx.pos
	loc := lx.locAt(start)
	b := lx.data[lx.pos]

	var kind Kind
	var length int
	var flags Flags
	var text Handle

	switch {
	case isAlpha(b):
		lx.pos++
		for isAlphaNumeric(lx.curByte()) {
			lx.pos++
		}
		spelling := lx.data[start:lx.pos]
		if kw, ok := lookupKeyword(spelling); ok {
			kind = kw
			flags |= IsKeyword
		} else {
			kind = Identifier
			lx.maybeSuggestKeyword(string(spelling), loc, len(spelling))
		}
		length = lx.pos - start
		text = lx.interner.Intern(spelling)

	case isDigit(b):
		kind, length = lx.scanNumber()
		text = lx.interner.Intern(lx.data[start:lx.pos])

	case b == '"':
		var f Flags
		length, f = lx.scanString()
		flags |= f
		kind = String
		text = lx.interner.Intern(lx.data[start:lx.pos])

	case b == '\'':
		var f Flags
		length, f = lx.scanChar()
		flags |= f
		kind = Char
		text = lx.interner.Intern(lx.data[start:lx.pos])

	default:
		k, n := matchOperator(b, lx.pos+1 < len(lx.data), lx.byteAt(lx.pos+1))
		if n == 0 {
			lx.reportUnexpected(b, loc)
			lx.pos++
			kind, length = Unknown, 1
		} else {
			lx.pos += n
			kind, length = k, n
		}
	}

	if atStart {
		flags |= AtStartOfLine
	}
	if hadSpace {
		flags |= HasLeadingSpace
	}

	lx.stats.charactersProcessed.Add(int64(length))
	lx.stats.recordKind(kind)

	return Token{Kind: kind, Location: loc, Length: length, Flags: flags, Text: text}
}

// maybeSuggestKeyword reports a Note-level PossibleMisspelling diagnostic
// with a fix-it naming the closest keyword spelling when that keyword
// clears keywordSuggestThreshold. Short identifiers are skipped: below 4 bytes, Jaro-Winkler
// scores on common short words are too noisy to be useful.
func (lx *Lexer) maybeSuggestKeyword(name string, loc source.Location, length int) {
	if len(name) < 4 {
		return
	}
	match, _, ok := keywordMatcher.Closest(name)
	if !ok {
		return
	}
	end := source.Advance(loc, length)
	lx.diags.Report(diag.Diagnostic{
		ID:       diag.PossibleMisspelling,
		Location: loc,
		Args:     []string{name, match},
		Ranges:   []source.Range{{Begin: loc, End: end}},
		FixIts:   []diag.FixIt{{Range: source.Range{Begin: loc, End: end}, Replacement: match}},
	})
}

func (lx *Lexer) reportUnterminated(id diag.ID, loc source.Location) {
	lx.diags.Report(diag.Diagnostic{ID: id, Location: loc})
}

func (lx *Lexer) reportUnexpected(b byte, loc source.Location) {
	var repr string
	if b >= 0x20 && b < 0x7f {
		repr = string(rune(b))
	} else {
		repr = fmt.Sprintf("0x%02X", b)
	}
	lx.diags.Report(diag.Diagnostic{
		ID:       diag.UnexpectedValue,
		Location: loc,
		Args:     []string{"an operator or punctuation character", repr},
		Ranges:   []source.Range{{Begin: loc, End: source.Advance(loc, 1)}},
	})
}
