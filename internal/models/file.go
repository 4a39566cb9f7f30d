package models

import (
	"errors"
	"path/filepath"
)

// FileEntry identifies a single file discovered under the scan root.
type FileEntry struct {
	Name string // Base name, used when reporting
	Path string // Absolute path, used when reading
}

// NewFileEntry builds a FileEntry from an absolute path.
func NewFileEntry(path string) FileEntry {
	return FileEntry{
		Name: filepath.Base(path),
		Path: path,
	}
}

// NewFileEntries builds FileEntry values for paths, preserving their order.
func NewFileEntries(paths []string) []FileEntry {
	entries := make([]FileEntry, len(paths))
	for i, p := range paths {
		entries[i] = NewFileEntry(p)
	}
	return entries
}

// Validate checks if the entry has all required fields
func (f FileEntry) Validate() error {
	if f.Path == "" {
		return errors.New("file path is required")
	}
	if !filepath.IsAbs(f.Path) {
		return errors.New("file path must be absolute")
	}
	if f.Name == "" {
		return errors.New("file name is required")
	}
	return nil
}
