package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore removes orphaned media files once their owning row is gone.
// A file that is already missing is not an error.
type FileStore interface {
	Remove(name string) error
}

// DiskStore is a FileStore rooted at the media directory on local disk.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Remove(name string) error {
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.Clean(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
