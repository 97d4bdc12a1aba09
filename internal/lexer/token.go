// Package lexer classifies a file's bytes into a stream of tokens with
// precise source locations, interning identifier and literal spellings
// through internal/intern and reporting lexical errors through
// internal/diag.
package lexer

import (
	"github.com/standardbeagle/mylang-front/internal/intern"
	"github.com/standardbeagle/mylang-front/internal/source"
)

// Handle is the interned-text handle type token spellings are stored as.
type Handle = intern.Handle

// Kind enumerates every token variant the lexer can produce. Ordering is
// an implementation detail; do not depend on numeric values across
// releases, only on the named constants.
type Kind int

const (
	EndOfFile Kind = iota
	Unknown

	Identifier
	Integer
	Float
	String
	Char

	LineComment
	BlockComment
	Whitespace
	Newline

	// Keywords. One canonical Kind per keyword; fn/function and
	// mod/module each resolve to the same Kind regardless of which
	// spelling appears in source (see keywords.go).
	KwAuto
	KwBreak
	KwCase
	KwConst
	KwContinue
	KwDefault
	KwDo
	KwElse
	KwEnum
	KwExtern
	KwFalse
	KwFor
	KwFunction
	KwIf
	KwImport
	KwLet
	KwModule
	KwMut
	KwNull
	KwReturn
	KwStruct
	KwSwitch
	KwTrue
	KwType
	KwVar
	KwWhile

	// Two-byte operators, checked longest-first.
	PlusEqual
	PlusPlus
	MinusEqual
	MinusMinus
	Arrow
	StarEqual
	SlashEqual
	PercentEqual
	EqualEqual
	BangEqual
	LessEqual
	LessLess
	GreaterEqual
	GreaterGreater
	AmpAmp
	PipePipe
	ColonColon

	// Single-byte operators/punctuation.
	Plus
	Minus
	Star
	Slash
	Percent
	Equal
	Bang
	Less
	Greater
	Amp
	Pipe
	Caret
	Tilde
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	Dot
	Colon
	Question
	At
	Hash
	Backslash
)

var kindNames = map[Kind]string{
	EndOfFile: "EndOfFile", Unknown: "Unknown",
	Identifier: "Identifier", Integer: "Integer", Float: "Float", String: "String", Char: "Char",
	LineComment: "LineComment", BlockComment: "BlockComment", Whitespace: "Whitespace", Newline: "Newline",
	KwAuto: "auto", KwBreak: "break", KwCase: "case", KwConst: "const", KwContinue: "continue",
	KwDefault: "default", KwDo: "do", KwElse: "else", KwEnum: "enum", KwExtern: "extern",
	KwFalse: "false", KwFor: "for", KwFunction: "function", KwIf: "if", KwImport: "import",
	KwLet: "let", KwModule: "module", KwMut: "mut", KwNull: "null", KwReturn: "return",
	KwStruct: "struct", KwSwitch: "switch", KwTrue: "true", KwType: "type", KwVar: "var", KwWhile: "while",
	PlusEqual: "+=", PlusPlus: "++", MinusEqual: "-=", MinusMinus: "--", Arrow: "->",
	StarEqual: "*=", SlashEqual: "/=", PercentEqual: "%=", EqualEqual: "==", BangEqual: "!=",
	LessEqual: "<=", LessLess: "<<", GreaterEqual: ">=", GreaterGreater: ">>",
	AmpAmp: "&&", PipePipe: "||", ColonColon: "::",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Equal: "=", Bang: "!",
	Less: "<", Greater: ">", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semicolon: ";", Comma: ",", Dot: ".", Colon: ":", Question: "?", At: "@", Hash: "#", Backslash: "\\",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(?)"
}

// IsKeywordKind reports whether k is one of the KwXxx keyword kinds.
func (k Kind) IsKeywordKind() bool {
	return k >= KwAuto && k <= KwWhile
}

// Flags is a bitset of per-token attributes.
type Flags uint8

const (
	AtStartOfLine Flags = 1 << iota
	HasLeadingSpace
	NeedsCleaning
	IsKeyword
)

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Token is one classified lexeme: its kind, its first-byte location, its
// byte length, attribute flags, and (for identifiers/keywords/literals)
// its interned spelling.
type Token struct {
	Kind     Kind
	Location source.Location
	Length   int
	Flags    Flags
	Text     Handle // zero value for punctuation/operators that need no text
}

// End returns the location one past the token's last byte.
func (t Token) End() source.Location {
	return source.Advance(t.Location, t.Length)
}

// Range returns the token's [Location, End) span.
func (t Token) Range() source.Range {
	return source.Range{Begin: t.Location, End: t.End()}
}
