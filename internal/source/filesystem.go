package source

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the operations FileManager needs from the
// filesystem, following the teacher's FileSystemInterface split in
// file_service.go (RealFileSystem vs. a test double).
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// osFileSystem is the production FileSystem backed by package os.
type osFileSystem struct{}

func (osFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }
func (osFileSystem) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }

// DefaultFileSystem is the FileSystem used when none is supplied.
var DefaultFileSystem FileSystem = osFileSystem{}
