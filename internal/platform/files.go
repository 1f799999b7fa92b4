package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFiles implements Files on the local filesystem.
type OSFiles struct{}

// List returns the entries of dir.
func (OSFiles) List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classifyFSError(err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

// Rename renames an entry within dir.
func (OSFiles) Rename(dir, from, to string) error {
	if err := os.Rename(filepath.Join(dir, from), filepath.Join(dir, to)); err != nil {
		return classifyFSError(err)
	}
	return nil
}

// Remove deletes an entry of dir.
func (OSFiles) Remove(dir, name string) error {
	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		return classifyFSError(err)
	}
	return nil
}

// Exists reports whether path exists.
func (OSFiles) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// classifyFSError attaches the platform sentinels to filesystem errors while
// keeping the underlying message.
func classifyFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotExist, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}
