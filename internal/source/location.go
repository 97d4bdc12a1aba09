// Package source implements the file manager (loading, caching, vending
// file contents) and source manager (mapping a 32-bit global location
// space to file/offset/line/column) that the lexer and diagnostic manager
// build on.
package source

// FileID is a 1-based index into the SourceManager's file table. The zero
// value is the sentinel "invalid" FileID. Ordering is by insertion order.
type FileID uint32

// InvalidFileID is the sentinel value meaning "no file".
const InvalidFileID FileID = 0

// IsValid reports whether id refers to a real, loaded file.
func (id FileID) IsValid() bool { return id != InvalidFileID }

// Location identifies a byte position within the global source space: a
// monotone counter shared across every loaded file. Value 0 is "invalid".
// Each FileID owns the half-open-at-zero, closed-at-end range
// [start, start+size] (the end offset addresses one-past-the-last-byte,
// so EOF locations are addressable).
type Location uint32

// InvalidLocation is the sentinel "no location" value.
const InvalidLocation Location = 0

// IsValid reports whether loc is a real location (non-zero).
func (loc Location) IsValid() bool { return loc != InvalidLocation }

// Range is a (begin, end) pair with begin <= end, both from the same file
// when produced by the lexer.
type Range struct {
	Begin Location
	End   Location
}

// IsValid reports whether the range's endpoints are both valid and ordered.
func (r Range) IsValid() bool {
	return r.Begin.IsValid() && r.End.IsValid() && r.Begin <= r.End
}

// Advance returns loc shifted forward by n bytes. Callers are responsible
// for ensuring the result still falls within the owning file's range.
func Advance(loc Location, n int) Location {
	return Location(int64(loc) + int64(n))
}

// IsBefore reports whether a precedes b in the global location space.
// This is well-defined both within one file (byte order) and across files
// (issuance order), since file ranges are allocated by an advancing
// counter and never overlap.
func IsBefore(a, b Location) bool {
	return a < b
}
