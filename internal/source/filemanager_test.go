package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/standardbeagle/mylang-front/pkg/pathutil"
)

func writeTemp(t *testing.T, dir, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetFileLoadsAndTerminatesWithNUL(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "let x = 1;")

	m := NewFileManager()
	entry, err := m.GetFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(entry.Bytes()) != "let x = 1;" {
		t.Errorf("unexpected content: %q", entry.Bytes())
	}
	if entry.Content[len(entry.Content)-1] != 0 {
		t.Error("expected trailing NUL byte in buffer")
	}
	if entry.Size != int64(len("let x = 1;")) {
		t.Errorf("expected size %d, got %d", len("let x = 1;"), entry.Size)
	}
}

func TestGetFileCachesByCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "content")

	m := NewFileManager()
	e1, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if e1 != e2 {
		t.Error("expected the same cached *Entry for repeated GetFile calls")
	}

	stats := m.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestGetFileMissingReturnsNoSuchFile(t *testing.T) {
	m := NewFileManager()
	_, err := m.GetFile(filepath.Join(t.TempDir(), "missing.ml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var fe *FileError
	if !asFileError(err, &fe) {
		t.Fatalf("expected *FileError, got %T: %v", err, err)
	}
	if fe.Code != ErrNoSuchFile {
		t.Errorf("expected ErrNoSuchFile, got %v", fe.Code)
	}
}

func TestGetFileOnDirectoryReturnsIsDirectory(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager()
	_, err := m.GetFile(dir)
	var fe *FileError
	if !asFileError(err, &fe) {
		t.Fatalf("expected *FileError, got %T: %v", err, err)
	}
	if fe.Code != ErrIsDirectory {
		t.Errorf("expected ErrIsDirectory, got %v", fe.Code)
	}
}

func TestRemoveFromCacheForcesReload(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "first")

	m := NewFileManager()
	e1, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}

	m.RemoveFromCache(path)

	writeTemp(t, dir, "a.ml", "second")
	e2, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if e1 == e2 {
		t.Error("expected a fresh Entry after RemoveFromCache")
	}
	if string(e2.Bytes()) != "second" {
		t.Errorf("expected updated content, got %q", e2.Bytes())
	}
}

func TestReloadFileSkipsRepublishWhenContentUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "stable")

	m := NewFileManager()
	e1, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}

	e2, changed, err := m.ReloadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("expected changed=false when the file's content is byte-identical")
	}
	if e1 != e2 {
		t.Error("expected ReloadFile to return the same cached *Entry when content is unchanged")
	}
}

func TestReloadFileRepublishesWhenContentChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "before")

	m := NewFileManager()
	e1, err := m.GetFile(path)
	if err != nil {
		t.Fatal(err)
	}

	writeTemp(t, dir, "a.ml", "after-and-longer")
	e2, changed, err := m.ReloadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected changed=true when the file's content differs")
	}
	if e1 == e2 {
		t.Error("expected a fresh *Entry once content differs")
	}
	if string(e2.Bytes()) != "after-and-longer" {
		t.Errorf("expected updated content, got %q", e2.Bytes())
	}
	if e1.FastHash == e2.FastHash {
		t.Error("expected FastHash to differ for different content")
	}

	cached := m.cached(mustCanonicalize(t, path))
	if cached != e2 {
		t.Error("expected ReloadFile to republish the fresh entry into the cache")
	}
}

func mustCanonicalize(t *testing.T, path string) string {
	t.Helper()
	canon, err := pathutil.Canonicalize(path)
	if err != nil {
		t.Fatal(err)
	}
	return canon
}

func TestClearCacheDropsEverything(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "x")

	m := NewFileManager()
	if _, err := m.GetFile(path); err != nil {
		t.Fatal(err)
	}
	m.ClearCache()

	if m.Stats().CacheEntries != 0 {
		t.Errorf("expected 0 cache entries after clear, got %d", m.Stats().CacheEntries)
	}
}

func TestConcurrentGetFileLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ml", "concurrent")

	m := NewFileManager()
	var wg sync.WaitGroup
	entries := make([]*Entry, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			e, err := m.GetFile(path)
			if err != nil {
				t.Error(err)
				return
			}
			entries[idx] = e
		}(i)
	}
	wg.Wait()

	first := entries[0]
	for i, e := range entries {
		if e != first {
			t.Errorf("entry %d differs from entry 0: concurrent loads should converge on one Entry", i)
		}
	}
	if m.Stats().Opens != 1 {
		t.Errorf("expected exactly one disk read across concurrent loads, got %d", m.Stats().Opens)
	}
}

func TestEvictionRespectsMaxCacheSize(t *testing.T) {
	dir := t.TempDir()
	pathA := writeTemp(t, dir, "a.ml", "0123456789")
	pathB := writeTemp(t, dir, "b.ml", "0123456789")

	m := NewFileManagerWithOptions(Options{MaxCacheSize: 15})

	if _, err := m.GetFile(pathA); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetFile(pathB); err != nil {
		t.Fatal(err)
	}

	// Total content is 20 bytes against a 15-byte cap: the oldest entry (a)
	// should have been evicted.
	if m.Stats().CacheEntries != 1 {
		t.Errorf("expected eviction to leave exactly one cached entry, got %d", m.Stats().CacheEntries)
	}
}

// asFileError is a small helper around errors.As to avoid importing the
// standard errors package into every test for a single assertion.
func asFileError(err error, target **FileError) bool {
	fe, ok := err.(*FileError)
	if !ok {
		return false
	}
	*target = fe
	return true
}
