package source

import (
	"bytes"
	"sort"
	"sync"
)

// fileInfo is the SourceManager-internal record for one registered file:
// its shared Entry, its starting offset in the global location space, and
// its lazily computed line index.
//
// Grounded on the teacher's FileContent.LineOffsets (file_content_store.go),
// lifted here from a field eagerly computed at load time into the
// dedicated, lazily-computed concept spec.md §4.4 requires.
type fileInfo struct {
	entry *Entry
	start Location

	lineOnce    sync.Once
	lineOffsets []uint32 // ascending byte offsets where each line begins; lineOffsets[0] == 0
}

// size returns the file's byte length (without the synthetic trailing NUL).
func (fi *fileInfo) size() int64 {
	return fi.entry.Size
}

// end returns one past the last addressable location in this file (the
// EOF location).
func (fi *fileInfo) end() Location {
	return Location(int64(fi.start) + fi.size())
}

// computeLineOffsets scans for '\n' and records the byte offset
// immediately following each one, plus 0 for the first line.
func computeLineOffsets(content []byte) []uint32 {
	offsets := make([]uint32, 0, bytes.Count(content, []byte{'\n'})+1)
	offsets = append(offsets, 0)
	idx := 0
	for {
		rel := bytes.IndexByte(content[idx:], '\n')
		if rel < 0 {
			break
		}
		idx += rel + 1
		offsets = append(offsets, uint32(idx))
	}
	return offsets
}

// ensureLineIndex computes fi.lineOffsets at most once.
func (fi *fileInfo) ensureLineIndex() {
	fi.lineOnce.Do(func() {
		fi.lineOffsets = computeLineOffsets(fi.entry.Bytes())
	})
}

// lineCount returns the number of lines in the file (at least 1, even for
// an empty file).
func (fi *fileInfo) lineCount() int {
	fi.ensureLineIndex()
	return len(fi.lineOffsets)
}

// lineForOffset returns the 1-based line number owning byte offset off.
func (fi *fileInfo) lineForOffset(off int) int {
	fi.ensureLineIndex()
	// largest index i such that lineOffsets[i] <= off
	i := sort.Search(len(fi.lineOffsets), func(i int) bool {
		return fi.lineOffsets[i] > uint32(off)
	})
	return i // sort.Search returns the first index failing the predicate; i-1+1 == i since 1-based
}

// columnForOffset returns the 1-based column of byte offset off, given the
// 1-based line it falls on.
func (fi *fileInfo) columnForOffset(off int, line int) int {
	fi.ensureLineIndex()
	lineStart := int(fi.lineOffsets[line-1])
	return off - lineStart + 1
}

// lineStartOffset returns the byte offset at which 1-based line begins.
func (fi *fileInfo) lineStartOffset(line int) int {
	fi.ensureLineIndex()
	if line < 1 || line > len(fi.lineOffsets) {
		return -1
	}
	return int(fi.lineOffsets[line-1])
}
