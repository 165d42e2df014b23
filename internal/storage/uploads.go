package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidImageType = errors.New("invalid image type")
	ErrEmptyFilename    = errors.New("no filename provided")
)

// UploadStore saves product images to local disk. Filenames are sanitized
// to their base name so uploads cannot escape the configured directory.
type UploadStore struct {
	dir        string
	extensions map[string]bool
}

// NewUploadStore creates the upload directory if needed and returns a store
func NewUploadStore(dir string, allowedExtensions []string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	extensions := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		extensions[strings.ToLower(strings.TrimSpace(ext))] = true
	}

	return &UploadStore{dir: dir, extensions: extensions}, nil
}

// Dir returns the directory files are stored in
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes the upload to disk and returns the stored filename
func (s *UploadStore) Save(filename string, r io.Reader) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", ErrEmptyFilename
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if !s.extensions[ext] {
		return "", ErrInvalidImageType
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file; a missing file is not an error
func (s *UploadStore) Remove(filename string) error {
	if filename == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload file: %w", err)
	}

	return nil
}
