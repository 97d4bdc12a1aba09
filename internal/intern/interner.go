// Package intern provides a string interner returning stable, pointer-equal
// handles for deduplicated byte content.
//
// Two handles returned by the same Interner for equal byte sequences are
// equal as Go values (the Handle struct wraps a single pointer field, so
// == compares pointer identity). Handles remain valid until Clear or
// garbage collection of the Interner itself.
package intern

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/standardbeagle/mylang-front/internal/alloc"
)

// handleEntry is the interner-owned, never-moved storage for one interned
// string. Content is NUL-terminated for cheap interop with C-style scanners.
type handleEntry struct {
	data []byte
}

// Handle is an opaque reference to deduplicated byte content. The zero
// value is the null handle ("invalid"). Handle is comparable with ==;
// two handles are equal iff they came from the same Interner for equal
// content, or are both null.
type Handle struct {
	entry *handleEntry
}

// IsNull reports whether h is the null/invalid handle.
func (h Handle) IsNull() bool { return h.entry == nil }

// Bytes returns the interned content without the trailing NUL. The
// returned slice must not be mutated; it aliases interner-owned storage.
func (h Handle) Bytes() []byte {
	if h.entry == nil {
		return nil
	}
	return h.entry.data[:len(h.entry.data)-1]
}

// String returns the interned content as a Go string (allocates a copy).
func (h Handle) String() string {
	if h.entry == nil {
		return ""
	}
	return string(h.Bytes())
}

// Len returns the length of the interned content in bytes.
func (h Handle) Len() int { return len(h.Bytes()) }

// Less orders handles by their pointer address. The ordering is stable for
// the lifetime of the process but otherwise arbitrary; it exists so handles
// can be used as sort/map keys without exposing unsafe.Pointer to callers.
func (h Handle) Less(other Handle) bool {
	return uintptr(unsafe.Pointer(h.entry)) < uintptr(unsafe.Pointer(other.entry))
}

// Stats reports interner-wide counters.
type Stats struct {
	InternCount    int64
	LookupCount    int64
	CollisionCount int64
	BytesStored    int64
	UniqueStrings  int64
	AverageLength  float64
}

// Interner deduplicates byte sequences and hands out stable Handles.
// Multiple goroutines may call Lookup/Contains concurrently with a single
// serialized Intern; the slow (writer) path re-checks the table after
// acquiring the write lock to avoid racing duplicate inserts.
type Interner struct {
	mu    sync.RWMutex
	table map[string]Handle

	arena    *alloc.Arena
	ownArena bool

	empty Handle

	internCount    atomic.Int64
	lookupCount    atomic.Int64
	collisionCount atomic.Int64
	bytesStored    atomic.Int64
}

// New creates an interner that owns heap-allocated, NUL-terminated buffers.
func New() *Interner {
	return newInterner(nil, false)
}

// NewWithArena creates an interner that borrows the given arena for content
// storage. The caller owns the arena's lifetime; it must outlive the
// interner's handles.
func NewWithArena(a *alloc.Arena) *Interner {
	return newInterner(a, false)
}

func newInterner(a *alloc.Arena, ownArena bool) *Interner {
	in := &Interner{
		table:    make(map[string]Handle),
		arena:    a,
		ownArena: ownArena,
	}
	in.empty = in.store(nil)
	return in
}

// store copies data into owned storage (arena or heap) and wraps it in a
// fresh Handle. Callers must hold in.mu for writing.
func (in *Interner) store(data []byte) Handle {
	var buf []byte
	if in.arena != nil {
		buf = in.arena.AllocateString(data)
	} else {
		buf = make([]byte, len(data)+1)
		copy(buf, data)
	}
	in.bytesStored.Add(int64(len(data)))
	return Handle{entry: &handleEntry{data: buf}}
}

// Intern returns the stable handle for bytes, creating one on first sight.
// intern(a) == intern(b) as handles iff the bytes are equal.
func (in *Interner) Intern(data []byte) Handle {
	in.internCount.Add(1)

	if len(data) == 0 {
		return in.empty
	}

	key := string(data)

	in.mu.RLock()
	if h, ok := in.table[key]; ok {
		in.mu.RUnlock()
		return h
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check after acquiring exclusivity: another writer may have
	// inserted this key while we waited for the lock.
	if h, ok := in.table[key]; ok {
		in.collisionCount.Add(1)
		return h
	}

	h := in.store(data)
	in.table[key] = h
	return h
}

// Lookup returns the handle for bytes if already interned, or the null
// handle otherwise. Safe for concurrent use alongside Intern.
func (in *Interner) Lookup(data []byte) Handle {
	in.lookupCount.Add(1)

	if len(data) == 0 {
		return in.empty
	}

	in.mu.RLock()
	defer in.mu.RUnlock()

	return in.table[string(data)]
}

// Contains reports whether data has already been interned.
func (in *Interner) Contains(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	_, ok := in.table[string(data)]
	return ok
}

// Size returns the number of unique strings currently interned.
func (in *Interner) Size() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.table)
}

// Clear discards all interned content. Existing handles become invalid;
// callers must not dereference them afterward. If the interner owns its
// arena, the arena is reset as well.
func (in *Interner) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.table = make(map[string]Handle)
	if in.arena != nil && in.ownArena {
		in.arena.Reset()
	}
	in.bytesStored.Store(0)
	in.empty = in.store(nil)
}

// Stats returns a snapshot of interner counters.
func (in *Interner) Stats() Stats {
	in.mu.RLock()
	unique := int64(len(in.table))
	bytes := in.bytesStored.Load()
	in.mu.RUnlock()

	var avg float64
	if unique > 0 {
		avg = float64(bytes) / float64(unique)
	}

	return Stats{
		InternCount:    in.internCount.Load(),
		LookupCount:    in.lookupCount.Load(),
		CollisionCount: in.collisionCount.Load(),
		BytesStored:    bytes,
		UniqueStrings:  unique,
		AverageLength:  avg,
	}
}
