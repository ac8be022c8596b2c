// Package storage keeps uploaded batch files on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("path is outside the storage root")

type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &FileStore{root: abs}, nil
}

// Save copies r to a new file named after a random id and the original
// extension, returning the stored path.
func (s *FileStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStore) Open(path string) (io.ReadCloser, error) {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, s.root+string(filepath.Separator)) {
		return nil, ErrInvalidPath
	}
	return os.Open(clean)
}

func (s *FileStore) Remove(path string) error {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, s.root+string(filepath.Separator)) {
		return ErrInvalidPath
	}
	return os.Remove(clean)
}
