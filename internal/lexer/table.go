package lexer

import (
	"sort"

	"github.com/standardbeagle/mylang-front/internal/source"
)

// NoIndex is the sentinel returned by lookups that find nothing.
const NoIndex = -1

// Table collects a token stream for random access: by index, by
// location, by range, or by kind. Tokens must be appended in increasing
// location order (as produced by a single Lexer pass) for the
// binary-searchable lookups to work.
type Table struct {
	tokens []Token
}

// NewTable creates an empty Table, optionally pre-sized to n tokens.
func NewTable(n int) *Table {
	return &Table{tokens: make([]Token, 0, n)}
}

// Append adds t to the end of the table.
func (tb *Table) Append(t Token) {
	tb.tokens = append(tb.tokens, t)
}

// Len returns the number of tokens in the table.
func (tb *Table) Len() int { return len(tb.tokens) }

// At returns the token at index i.
func (tb *Table) At(i int) Token { return tb.tokens[i] }

// FindAtLocation returns the index of the token beginning exactly at
// loc, or NoIndex if none does.
func (tb *Table) FindAtLocation(loc source.Location) int {
	i := sort.Search(len(tb.tokens), func(i int) bool { return tb.tokens[i].Location >= loc })
	if i < len(tb.tokens) && tb.tokens[i].Location == loc {
		return i
	}
	return NoIndex
}

// FindInRange returns the indices of every token whose span overlaps r.
func (tb *Table) FindInRange(r source.Range) []int {
	lo := sort.Search(len(tb.tokens), func(i int) bool { return tb.tokens[i].End() > r.Begin })
	var out []int
	for i := lo; i < len(tb.tokens) && tb.tokens[i].Location < r.End; i++ {
		out = append(out, i)
	}
	return out
}

// FindByKind returns the indices of every token of the given kind, in
// order. This is a linear scan: kind is not part of the location-ordered
// index the other lookups rely on.
func (tb *Table) FindByKind(k Kind) []int {
	var out []int
	for i, t := range tb.tokens {
		if t.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

// Iterator is a forward stream cursor over a Table with one token of
// peek, mirroring Lexer's own Next/Peek contract for callers that have
// already materialized a full token stream (e.g. a parser backtracking
// within one production).
type Iterator struct {
	tb  *Table
	pos int
}

// NewIterator creates an Iterator starting at the first token.
func (tb *Table) NewIterator() *Iterator {
	return &Iterator{tb: tb}
}

// Next returns the current token and advances, or a zero-location
// EndOfFile token repeatedly once exhausted (callers should check AtEnd).
func (it *Iterator) Next() Token {
	t := it.Peek()
	if it.pos < it.tb.Len() {
		it.pos++
	}
	return t
}

// Peek returns the current token without advancing.
func (it *Iterator) Peek() Token {
	if it.pos >= it.tb.Len() {
		return Token{Kind: EndOfFile}
	}
	return it.tb.At(it.pos)
}

// AtEnd reports whether the iterator has consumed every token.
func (it *Iterator) AtEnd() bool {
	return it.pos >= it.tb.Len()
}
