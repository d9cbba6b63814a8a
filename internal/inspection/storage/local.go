// Package storage holds the video storage backends: local disk and the
// MinIO object store. Placement outcomes are tracked per backend; the
// lifecycle manager combines them into the observed location.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cov_inspection_service/internal/inspection/domain"
)

// Local is the disk backend contract.
type Local interface {
	Save(r io.Reader, filename string) error
	Open(filename string) (io.ReadSeekCloser, error)
	Exists(filename string) bool
	Rename(oldName, newName string) error
	Path(filename string) string
}

// LocalStore stores files flat under a root directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

// Path returns the absolute path of a stored file.
func (s *LocalStore) Path(filename string) string {
	return filepath.Join(s.root, filepath.Base(filename))
}

// Save writes the reader to {root}/{filename}, replacing any existing file.
func (s *LocalStore) Save(r io.Reader, filename string) error {
	f, err := os.Create(s.Path(filename))
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// Open returns a seekable stream, or domain.ErrVideoNotFound when the file
// does not exist.
func (s *LocalStore) Open(filename string) (io.ReadSeekCloser, error) {
	f, err := os.Open(s.Path(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether the file is present.
func (s *LocalStore) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Rename moves a stored file to a new name in place. Archival renames of
// superseded videos go through here; nothing is ever deleted.
func (s *LocalStore) Rename(oldName, newName string) error {
	return os.Rename(s.Path(oldName), s.Path(newName))
}
