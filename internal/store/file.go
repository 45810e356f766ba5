package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mmcdole/multiki/internal/domain"
)

// SnapshotFileName is the file the file backend owns.
const SnapshotFileName = "catalog_cache.json"

// Location resolves the snapshot file path. It is called on every access so
// hosts can supply paths that are only known at run time.
type Location func() (string, error)

// DirLocation places the snapshot in dir, creating it on demand.
func DirLocation(dir string) Location {
	return func() (string, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create cache directory: %w", err)
		}
		return filepath.Join(dir, SnapshotFileName), nil
	}
}

// FileBackend stores the snapshot as a single JSON file.
type FileBackend struct {
	location Location
}

// NewFileBackend creates a file backend at location.
func NewFileBackend(location Location) *FileBackend {
	return &FileBackend{location: location}
}

func (f *FileBackend) Read() ([]byte, error) {
	path, err := f.location()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNoSnapshot
	}
	return data, err
}

func (f *FileBackend) Write(data []byte) error {
	path, err := f.location()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func (f *FileBackend) Remove() error {
	path, err := f.location()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
