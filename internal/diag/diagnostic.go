// Package diag implements the central diagnostic sink: a static table of
// known diagnostic ids, a manager that filters/counts/dispatches reports,
// and pluggable consumers (text, JSON).
package diag

import "github.com/standardbeagle/mylang-front/internal/source"

// Level is the severity of a diagnostic.
type Level int

const (
	Note Level = iota
	Warning
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// Kind classifies which phase a diagnostic id belongs to.
type Kind int

const (
	System Kind = iota
	Lexical
	Syntax
	Semantic
	Type
	Codegen
	Link
	Runtime
)

// ID is a stable, fixed identifier naming one diagnostic in the static
// table below. Ordering is an implementation detail; callers must not
// depend on numeric values across releases, only on the named constants.
type ID int

const (
	// InvalidID is the catch-all sentinel for an id with no table entry.
	InvalidID ID = iota
	UnterminatedStringLiteral
	UnterminatedCharacterLiteral
	UnterminatedBlockComment
	UnexpectedValue
	PossibleMisspelling
)

// Info is one static, compile-time-frozen entry: level, kind, short
// message, and a detailed template with %0, %1, … placeholders bound by
// a Diagnostic's Args at report time.
type Info struct {
	Level    Level
	Kind     Kind
	Short    string
	Detailed string
}

// table is the frozen DiagnosticInfo registry, keyed by ID. Required
// categories per the external-interfaces contract: UnterminatedStringLiteral,
// UnterminatedCharacterLiteral, UnexpectedValue, plus a catch-all invalid
// id. UnterminatedBlockComment is this implementation's resolution of the
// "should an unterminated block comment get its own id" open question:
// yes, it does.
var table = map[ID]Info{
	InvalidID: {
		Level: Fatal, Kind: System,
		Short:    "invalid diagnostic id",
		Detailed: "an internal component reported an unrecognized diagnostic id",
	},
	UnterminatedStringLiteral: {
		Level: Error, Kind: Lexical,
		Short:    "unterminated string literal",
		Detailed: "string literal starting here is never closed with a matching '\"'",
	},
	UnterminatedCharacterLiteral: {
		Level: Error, Kind: Lexical,
		Short:    "unterminated character literal",
		Detailed: "character literal starting here is never closed with a matching '",
	},
	UnterminatedBlockComment: {
		Level: Error, Kind: Lexical,
		Short:    "unterminated block comment",
		Detailed: "block comment starting here reaches end of file without a closing '*/'",
	},
	UnexpectedValue: {
		Level: Error, Kind: Lexical,
		Short:    "unexpected character",
		Detailed: "expected %0, found %1",
	},
	PossibleMisspelling: {
		Level: Note, Kind: Lexical,
		Short:    "possible misspelling",
		Detailed: "%0 is not a keyword; did you mean %1?",
	},
}

// Lookup returns the static Info for id, or the InvalidID entry if id is
// not registered.
func Lookup(id ID) Info {
	if info, ok := table[id]; ok {
		return info
	}
	return table[InvalidID]
}

// FixIt is data describing a suggested textual repair: replace the bytes
// in Range with Replacement. Applying a FixIt is the driver's
// responsibility; the diagnostic manager never mutates source.
type FixIt struct {
	Range       source.Range
	Replacement string
}

// Diagnostic is one reported occurrence: a static id, a location, the
// ordered args substituted into its message template, zero or more
// highlight ranges, and zero or more fix-it hints.
type Diagnostic struct {
	ID       ID
	Location source.Location
	Args     []string
	Ranges   []source.Range
	FixIts   []FixIt

	// Level is resolved at report time (it starts as Info.Level but may be
	// promoted Warning->Error by warningsAsErrors).
	Level Level
}

// Message substitutes Args into the id's detailed template, replacing
// %0, %1, … with the corresponding argument.
func (d Diagnostic) Message() string {
	return substitute(Lookup(d.ID).Detailed, d.Args)
}

func substitute(template string, args []string) string {
	out := make([]byte, 0, len(template))
	for i := 0; i < len(template); i++ {
		if template[i] == '%' && i+1 < len(template) && template[i+1] >= '0' && template[i+1] <= '9' {
			idx := int(template[i+1] - '0')
			if idx < len(args) {
				out = append(out, args[idx]...)
			}
			i++
			continue
		}
		out = append(out, template[i])
	}
	return string(out)
}
