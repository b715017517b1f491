// Package storage keeps generated thumbnail files on disk and builds the URLs
// they are served under.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for storage names that would escape the root.
var ErrInvalidName = errors.New("invalid storage name")

// FileStorage stores thumbnails below Root and serves them below BaseURL.
type FileStorage struct {
	root    string
	baseURL string
}

// NewFileStorage creates a storage rooted at root. The base URL is joined
// with domain the same way thumbnail URLs are.
func NewFileStorage(root, baseURL, domain string) (*FileStorage, error) {
	if root == "" {
		return nil, errors.New("storage root not set")
	}
	if baseURL == "" {
		return nil, errors.New("storage base url not set")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FileStorage{root: root, baseURL: DomainURL(domain, baseURL)}, nil
}

// Root returns the storage directory.
func (s *FileStorage) Root() string {
	return s.root
}

// Path returns the file system path of name.
func (s *FileStorage) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// URL returns the public URL of name.
func (s *FileStorage) URL(name string) string {
	return joinURL(s.baseURL, name)
}

// Exists reports whether name has been stored.
func (s *FileStorage) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Stat returns the file info of name.
func (s *FileStorage) Stat(name string) (os.FileInfo, error) {
	return os.Stat(s.Path(name))
}

// TempPath returns a unique path in the destination directory of name.
// Writing there first and calling Save publishes the file atomically.
func (s *FileStorage) TempPath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	dest := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", name, err)
	}
	return filepath.Join(filepath.Dir(dest), "."+uuid.NewString()+filepath.Ext(name)), nil
}

// Save moves the temporary file tmp to name, replacing an existing file.
func (s *FileStorage) Save(tmp, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return fmt.Errorf("setting permissions of %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

// WriteFile stores data as name.
func (s *FileStorage) WriteFile(name string, data []byte) error {
	tmp, err := s.TempPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return s.Save(tmp, name)
}

func checkName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
