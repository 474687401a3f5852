package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/0xADE/ade-dentry/internal/indexer"
	"github.com/0xADE/ade-dentry/internal/indexer/desktop"
)

const dirPermissions = 0755

// ErrNoUserDir is returned when a new file is saved without a user directory
var ErrNoUserDir = errors.New("no user application directory")

// Store persists descriptor files for the editing flow.
// New files are created in the user directory.
type Store struct {
	userDir string
}

// NewStore creates a store writing new files below userDir
func NewStore(userDir string) *Store {
	return &Store{userDir: userDir}
}

// UserDir returns the directory new files are created in
func (s *Store) UserDir() string {
	return s.userDir
}

// Open parses the file at path for editing
func (s *Store) Open(path string) (*desktop.File, error) {
	return desktop.ParseFile(path)
}

// Save writes f to an existing path
func (s *Store) Save(path string, f *desktop.File) error {
	if err := f.Save(path); err != nil {
		return err
	}
	log.Debug("saved", "path", path)
	return nil
}

// Create writes f as a new file named after its slug and returns the path.
// The user directory is created when missing.
func (s *Store) Create(f *desktop.File) (string, error) {
	path, err := s.PathFor(f.Entry.Name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.userDir, dirPermissions); err != nil {
		return "", &desktop.IOError{Path: s.userDir, Err: err}
	}
	if err := s.Save(path, f); err != nil {
		return "", err
	}
	return path, nil
}

// PathFor returns the path a new file with the given name is saved to
func (s *Store) PathFor(name string) (string, error) {
	if s.userDir == "" {
		return "", ErrNoUserDir
	}
	slug := Slug(name)
	if slug == "" {
		return "", &desktop.MissingFieldError{Field: "Name"}
	}
	// The file must land directly in the user directory
	if strings.ContainsRune(slug, '/') || strings.ContainsRune(slug, filepath.Separator) {
		return "", &desktop.InvalidValueError{Field: "Name", Value: name}
	}
	return filepath.Join(s.userDir, slug+indexer.Extension), nil
}

// Delete removes the file at path
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return &desktop.IOError{Path: path, Err: err}
	}
	log.Debug("deleted", "path", path)
	return nil
}

// Slug lower-cases name and replaces spaces with hyphens
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
