// Package storage keeps uploaded and generated packages in a scratch directory
// for the lifetime of one request.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalidKey = errors.New("invalid storage key")

const fallbackName = "document.docx"

type Store struct {
	fs  afero.Fs
	dir string
}

// New returns a store rooted at dir on fs, creating the directory if needed.
func New(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("couldn't create scratch directory %q: %w", dir, err)
	}

	return &Store{fs: fs, dir: dir}, nil
}

func NewOS(dir string) (*Store, error) {
	return New(afero.NewOsFs(), dir)
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a fresh key derived from name and returns the key.
// Keys never collide, so concurrent uploads of the same file name are safe.
func (s *Store) Save(name string, data []byte) (string, error) {
	key := uuid.New().String() + "-" + SanitizeFilename(name)
	if err := afero.WriteFile(s.fs, s.path(key), data, 0600); err != nil {
		return "", fmt.Errorf("couldn't save %q: %w", key, err)
	}

	return key, nil
}

func (s *Store) Open(key string) (afero.File, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	return s.fs.Open(s.path(key))
}

func (s *Store) ReadFile(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	return afero.ReadFile(s.fs, s.path(key))
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	err := s.fs.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("couldn't remove %q: %w", key, err)
	}

	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func checkKey(key string) error {
	if key == "" || key != SanitizeFilename(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}

// SanitizeFilename reduces name to a plain file name made of ASCII letters,
// digits, '.', '-' and '_'. Path separators and whitespace become '_', accents
// are stripped, and dots or underscores at either end are dropped. An empty
// result is replaced by a fixed fallback name.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '.' || r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return fallbackName
	}

	return out
}
