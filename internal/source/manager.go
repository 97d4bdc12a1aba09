package source

import (
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// SourceManager holds the file table and allocates the global location
// space: a monotone 32-bit counter advanced by CreateFile, mirroring the
// teacher's FileContentStore.nextID atomic.Uint32 (file_content_store.go),
// generalized from a per-file-content ID into a byte-addressed global
// space per spec.md §4.4.
type SourceManager struct {
	files *FileManager

	mu       sync.RWMutex
	table    []*fileInfo      // ordered by start offset == insertion order
	byPath   map[string]FileID // canonical path -> FileID
	nextLoc  atomic.Uint32     // next location to hand out; 0 is reserved invalid
	createSF singleflight.Group

	lastMu    sync.Mutex
	lastEntry *lastLookup
}

// lastLookup is a one-entry "last location" fast-path cache. True
// per-goroutine thread-local storage isn't an idiomatic Go pattern, so this
// is a single shared cache behind a short lock, covering the common case of
// sequential scans (lexing, diagnostic rendering) visiting nearby
// locations back-to-back. Any cache miss simply recomputes authoritatively.
type lastLookup struct {
	fid  FileID
	line int
	// lineStart is the byte offset (within the file) at which `line` begins.
	lineStart int
}

// NewSourceManager creates a SourceManager backed by fm. The global
// location counter starts at 1 (0 is reserved for InvalidLocation).
func NewSourceManager(fm *FileManager) *SourceManager {
	sm := &SourceManager{
		files:  fm,
		byPath: make(map[string]FileID),
	}
	sm.nextLoc.Store(1)
	return sm
}

// CreateFile loads path via the FileManager (if not already loaded) and
// reserves a contiguous slice of the global location space for it. A
// second request for the same canonical path returns the existing FileID
// without reserving new space; singleflight.Group guarantees this holds
// even under concurrent callers racing on the same brand-new path.
func (sm *SourceManager) CreateFile(path string) (FileID, error) {
	entry, err := sm.files.GetFile(path)
	if err != nil {
		return InvalidFileID, err
	}
	canon := entry.Path()

	if fid, ok := sm.existingFileID(canon); ok {
		return fid, nil
	}

	result, err, _ := sm.createSF.Do(canon, func() (interface{}, error) {
		if fid, ok := sm.existingFileID(canon); ok {
			return fid, nil
		}
		return sm.register(entry), nil
	})
	if err != nil {
		return InvalidFileID, err
	}
	return result.(FileID), nil
}

func (sm *SourceManager) existingFileID(canon string) (FileID, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	fid, ok := sm.byPath[canon]
	return fid, ok
}

func (sm *SourceManager) register(entry *Entry) FileID {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	start := Location(sm.nextLoc.Load())
	// Reserve [start, start+size] inclusive at the end, so an EOF location
	// is addressable; the next file starts one past that.
	sm.nextLoc.Store(uint32(int64(start) + entry.Size + 1))

	fi := &fileInfo{entry: entry, start: start}
	sm.table = append(sm.table, fi)
	fid := FileID(len(sm.table))
	sm.byPath[entry.Path()] = fid
	return fid
}

func (sm *SourceManager) fileInfoAt(fid FileID) *fileInfo {
	if !fid.IsValid() {
		return nil
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	idx := int(fid) - 1
	if idx < 0 || idx >= len(sm.table) {
		return nil
	}
	return sm.table[idx]
}

// StartLoc returns the first location owned by fid, or InvalidLocation.
func (sm *SourceManager) StartLoc(fid FileID) Location {
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return InvalidLocation
	}
	return fi.start
}

// EndLoc returns the EOF location owned by fid (one past the last byte,
// inclusive per spec.md's "addressable end-of-file" rule).
func (sm *SourceManager) EndLoc(fid FileID) Location {
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return InvalidLocation
	}
	return fi.end()
}

// LocForFileOffset returns the location corresponding to byte offset off
// within fid, or InvalidLocation if fid is invalid or off is out of range.
func (sm *SourceManager) LocForFileOffset(fid FileID, off int) Location {
	fi := sm.fileInfoAt(fid)
	if fi == nil || off < 0 || int64(off) > fi.size() {
		return InvalidLocation
	}
	return Location(int64(fi.start) + int64(off))
}

// FileID returns the FileID owning loc, found by binary search over the
// file table ordered by start offset. Returns InvalidFileID if loc falls
// outside every owned interval.
func (sm *SourceManager) FileID(loc Location) FileID {
	if !loc.IsValid() {
		return InvalidFileID
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	// table is ordered by start offset (insertion order == start order).
	i := sort.Search(len(sm.table), func(i int) bool {
		return sm.table[i].start > loc
	})
	if i == 0 {
		return InvalidFileID
	}
	fi := sm.table[i-1]
	if loc > fi.end() {
		return InvalidFileID
	}
	return FileID(i)
}

// FileOffset returns the byte offset of loc within its owning file.
func (sm *SourceManager) FileOffset(loc Location) int {
	fid := sm.FileID(loc)
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return -1
	}
	return int(loc) - int(fi.start)
}

// LineNumber returns the 1-based line number of loc.
func (sm *SourceManager) LineNumber(loc Location) int {
	fid := sm.FileID(loc)
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return 0
	}
	off := int(loc) - int(fi.start)

	if cached, ok := sm.fastLine(fid, off, fi); ok {
		return cached
	}

	line := fi.lineForOffset(off)
	sm.updateCache(fid, line, fi.lineStartOffset(line))
	return line
}

// ColumnNumber returns the 1-based column number of loc.
func (sm *SourceManager) ColumnNumber(loc Location) int {
	fid := sm.FileID(loc)
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return 0
	}
	off := int(loc) - int(fi.start)
	line := sm.LineNumber(loc)
	if line == 0 {
		return 0
	}
	return fi.columnForOffset(off, line)
}

// LineAndColumn returns both in one call, sharing the line lookup.
func (sm *SourceManager) LineAndColumn(loc Location) (line, column int) {
	fid := sm.FileID(loc)
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return 0, 0
	}
	off := int(loc) - int(fi.start)
	line = fi.lineForOffset(off)
	column = fi.columnForOffset(off, line)
	sm.updateCache(fid, line, fi.lineStartOffset(line))
	return line, column
}

// fastLine consults the last-location cache: valid only when loc's file
// matches and its offset falls on the same line already cached.
func (sm *SourceManager) fastLine(fid FileID, off int, fi *fileInfo) (int, bool) {
	sm.lastMu.Lock()
	defer sm.lastMu.Unlock()

	c := sm.lastEntry
	if c == nil || c.fid != fid {
		return 0, false
	}
	// The cached line covers [lineStart, nextLineStart); without scanning
	// forward we can only safely reuse it when off sits at or after the
	// cached line's start and still within the same file - verified by a
	// cheap re-check against fileInfo's own line index if already computed.
	if len(fi.lineOffsets) == 0 {
		return 0, false
	}
	if off < c.lineStart {
		return 0, false
	}
	// Determine the start of the following line, if any.
	nextIdx := c.line // 0-based index of the next line in lineOffsets
	if nextIdx < len(fi.lineOffsets) && off >= int(fi.lineOffsets[nextIdx]) {
		return 0, false
	}
	return c.line, true
}

func (sm *SourceManager) updateCache(fid FileID, line, lineStart int) {
	sm.lastMu.Lock()
	defer sm.lastMu.Unlock()
	sm.lastEntry = &lastLookup{fid: fid, line: line, lineStart: lineStart}
}

// ClearCache invalidates the last-location fast path. Required after any
// operation that could relocate a file's line index (none currently do,
// since line indices are computed once and files are immutable, but the
// hook exists for spec.md §9's invalidation requirement).
func (sm *SourceManager) ClearCache() {
	sm.lastMu.Lock()
	defer sm.lastMu.Unlock()
	sm.lastEntry = nil
}

// Filename returns the canonical path owning loc, or "" if invalid.
func (sm *SourceManager) Filename(loc Location) string {
	fi := sm.fileInfoAt(sm.FileID(loc))
	if fi == nil {
		return ""
	}
	return fi.entry.Path()
}

// CharacterPointer returns the byte at loc, or 0 if loc is out of range.
func (sm *SourceManager) CharacterPointer(loc Location) byte {
	fi := sm.fileInfoAt(sm.FileID(loc))
	if fi == nil {
		return 0
	}
	off := int(loc) - int(fi.start)
	content := fi.entry.Bytes()
	if off < 0 || off >= len(content) {
		return 0
	}
	return content[off]
}

// SourceText returns the bytes in [begin, end). Returns nil if the
// locations lie in different files or are otherwise invalid.
func (sm *SourceManager) SourceText(begin, end Location) []byte {
	fidB := sm.FileID(begin)
	fidE := sm.FileID(end)
	if fidB == InvalidFileID || fidB != fidE {
		return nil
	}
	fi := sm.fileInfoAt(fidB)
	content := fi.entry.Bytes()
	offB := int(begin) - int(fi.start)
	offE := int(end) - int(fi.start)
	if offB < 0 || offE > len(content) || offB > offE {
		return nil
	}
	return content[offB:offE]
}

// SourceLength returns end-begin as a byte count, or -1 if invalid.
func (sm *SourceManager) SourceLength(begin, end Location) int {
	if !begin.IsValid() || !end.IsValid() || end < begin {
		return -1
	}
	return int(end - begin)
}

// IsBefore reports whether a precedes b. Defined globally since locations
// are issued from one monotone counter across all files.
func (sm *SourceManager) IsBefore(a, b Location) bool {
	return IsBefore(a, b)
}

// Advance returns loc shifted forward n bytes.
func (sm *SourceManager) Advance(loc Location, n int) Location {
	return Advance(loc, n)
}

// FullLoc bundles everything callers typically want about a location in
// one lookup.
type FullLoc struct {
	FileID FileID
	Loc    Location
	Offset int
	Line   int
	Column int
	Name   string
}

// FullLoc resolves loc into a FullLoc snapshot in a single call.
func (sm *SourceManager) FullLoc(loc Location) FullLoc {
	fid := sm.FileID(loc)
	if fid == InvalidFileID {
		return FullLoc{Loc: loc}
	}
	line, col := sm.LineAndColumn(loc)
	return FullLoc{
		FileID: fid,
		Loc:    loc,
		Offset: sm.FileOffset(loc),
		Line:   line,
		Column: col,
		Name:   sm.Filename(loc),
	}
}

// LineStartLoc returns the location at which the given 1-based line of
// fid begins, or InvalidLocation if fid or line is out of range.
func (sm *SourceManager) LineStartLoc(fid FileID, line int) Location {
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return InvalidLocation
	}
	off := fi.lineStartOffset(line)
	if off < 0 {
		return InvalidLocation
	}
	return Location(int64(fi.start) + int64(off))
}

// LineText returns the bytes of the given 1-based line of fid, excluding
// its trailing newline.
func (sm *SourceManager) LineText(fid FileID, line int) []byte {
	start := sm.LineStartLoc(fid, line)
	if !start.IsValid() {
		return nil
	}
	end := sm.EndLoc(fid)
	text := sm.SourceText(start, end)
	for i, b := range text {
		if b == '\n' {
			return text[:i]
		}
	}
	return text
}

// LineCount returns the number of lines in fid's file.
func (sm *SourceManager) LineCount(fid FileID) int {
	fi := sm.fileInfoAt(fid)
	if fi == nil {
		return 0
	}
	return fi.lineCount()
}
