package content

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes and removes the markdown files behind the collection. The
// file name is derived deterministically from the slug; draft status lives
// in the frontmatter, not the file name (legacy "-draft" files are still
// readable, see Collection).
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the content directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the content root.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the backing file name for a slug.
func FileName(slug string) string {
	return slug + ".md"
}

// Exists reports whether a record exists under slug, including under the
// legacy draft-suffixed name.
func (s *Store) Exists(slug string) bool {
	for _, name := range []string{slug + ".md", slug + "-draft.md"} {
		if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Write persists doc under the slug's file, creating the content root if
// needed. Overwrites any previous version.
func (s *Store) Write(slug string, doc []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	name := FileName(slug)
	if err := os.WriteFile(filepath.Join(s.dir, name), doc, 0o644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	return name, nil
}

// Remove deletes the files for slug, both canonical and legacy draft names.
// Returns the first error; callers on the rename path treat failures as
// non-fatal because the record already exists under the new slug.
func (s *Store) Remove(slug string) error {
	var firstErr error
	for _, name := range []string{slug + ".md", slug + "-draft.md"} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
