package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store persists uploaded file bytes on the local filesystem under a single
// base directory. Paths are derived from the client-declared filename only; callers
// are expected to have enforced filename uniqueness beforehand.
type Store struct {
	basePath string
}

// NewStore creates the base directory if it does not exist and returns a Store.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Path returns the location a file with the given name is (or would be) stored at.
func (s *Store) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// Save writes the contents of r to the store under name and returns the path.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	path := s.Path(name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// Exists reports whether a file with the given name is present in the store.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
