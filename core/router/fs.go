package router

import (
	"io/fs"
	"os"
)

// FileSystem is the file capability the files route needs.
// Names are passed through untouched.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// OSFileSystem is FileSystem backed by the os package
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile creates or truncates name. Concurrent writers are not
// coordinated; the last one wins.
func (OSFileSystem) WriteFile(name string, data []byte) error {
	return os.WriteFile(name, data, 0644)
}
