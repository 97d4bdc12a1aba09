package source

import (
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/mylang-front/internal/intern"
)

// Entry is an immutable, loaded file: its canonical path (as an interned
// handle), its content buffer (with a trailing NUL byte downstream code may
// rely on), and the filesystem metadata captured at load time.
//
// Entry is shared between the FileManager's cache and any SourceManager
// that has registered the file; Go's garbage collector is the ownership
// mechanism (the buffer's lifetime is the longest holder), so unlike the
// teacher's FileContent there is no manual RefCount field to maintain.
type Entry struct {
	CanonicalPath intern.Handle
	// Content is size+1 bytes: the file's bytes followed by one NUL byte.
	Content []byte
	Size    int64
	ModTime time.Time
	// FastHash is an xxhash digest of Content, for cheap equality checks
	// (e.g. a watcher deciding whether a reloaded file actually changed)
	// without re-comparing the full buffer.
	FastHash uint64
}

// HashContent computes the xxhash digest of content (excluding any
// trailing NUL terminator the caller may have appended).
func HashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Bytes returns the file's content without the trailing NUL sentinel.
func (e *Entry) Bytes() []byte {
	if e == nil || len(e.Content) == 0 {
		return nil
	}
	return e.Content[:len(e.Content)-1]
}

// Path returns the canonical path as a string.
func (e *Entry) Path() string {
	if e == nil {
		return ""
	}
	return e.CanonicalPath.String()
}
