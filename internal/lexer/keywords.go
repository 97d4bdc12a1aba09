package lexer

import (
	"sort"

	"github.com/standardbeagle/mylang-front/internal/suggest"
)

// keywordEntry pairs a spelling with the kind it resolves to. keywords
// must stay sorted by Spelling for sort.Search to binary-search it.
type keywordEntry struct {
	Spelling string
	Kind     Kind
}

// keywords is the canonical spelling table: one entry per keyword, plus
// the accepted `fn`/`mod` synonyms for `function`/`module`. The spec
// leaves the canonical-vs-synonym choice to the implementation provided
// it is applied consistently within one lexer instance; this lexer
// always accepts both spellings and reports the same Kind for either,
// rather than making the synonym a construction-time option — simpler,
// and the synonym never needs to round-trip back to source text since
// the token's interned spelling already preserves whichever the user wrote.
var keywords = func() []keywordEntry {
	k := []keywordEntry{
		{"auto", KwAuto}, {"break", KwBreak}, {"case", KwCase}, {"const", KwConst},
		{"continue", KwContinue}, {"default", KwDefault}, {"do", KwDo}, {"else", KwElse},
		{"enum", KwEnum}, {"extern", KwExtern}, {"false", KwFalse}, {"fn", KwFunction},
		{"for", KwFor}, {"function", KwFunction}, {"if", KwIf}, {"import", KwImport},
		{"let", KwLet}, {"mod", KwModule}, {"module", KwModule}, {"mut", KwMut},
		{"null", KwNull}, {"return", KwReturn}, {"struct", KwStruct}, {"switch", KwSwitch},
		{"true", KwTrue}, {"type", KwType}, {"var", KwVar}, {"while", KwWhile},
	}
	sort.Slice(k, func(i, j int) bool { return k[i].Spelling < k[j].Spelling })
	return k
}()

// lookupKeyword performs an exact, case-sensitive binary search for
// spelling. Returns (Identifier, false) when spelling is not a keyword.
func lookupKeyword(spelling []byte) (Kind, bool) {
	s := string(spelling)
	i := sort.Search(len(keywords), func(i int) bool { return keywords[i].Spelling >= s })
	if i < len(keywords) && keywords[i].Spelling == s {
		return keywords[i].Kind, true
	}
	return Identifier, false
}

// keywordSuggestThreshold is stricter than suggest.DefaultThreshold: an
// identifier scanned here is ordinary, valid source far more often than
// it's a typo'd keyword, and Jaro-Winkler's prefix bonus alone puts
// unrelated same-length, same-first-letters words (e.g. "result" vs
// "return") uncomfortably close to the default threshold. Raising the bar
// trades a few missed near-misses for far fewer spurious notes on correct
// code.
const keywordSuggestThreshold = 0.92

// keywordMatcher suggests the closest keyword spelling to a
// near-miss identifier (e.g. "retrun" -> "return"), for the lexer's
// PossibleMisspelling fix-it hint.
var keywordMatcher = func() *suggest.Matcher {
	spellings := make([]string, len(keywords))
	for i, k := range keywords {
		spellings[i] = k.Spelling
	}
	return suggest.NewMatcher(spellings, keywordSuggestThreshold)
}()
