// Package source provides file content access for the analyzers and
// the fix engine.
package source

import (
	"fmt"
	"os"
	"sort"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FileSet is an in-memory path-to-content mapping. The fix engine
// consumes and produces file sets; tests build them directly.
type FileSet map[string]string

// Read implements ContentSource.
func (fs FileSet) Read(path string) ([]byte, error) {
	content, ok := fs[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return []byte(content), nil
}

// Paths returns the contained paths in lexical order.
func (fs FileSet) Paths() []string {
	paths := make([]string, 0, len(fs))
	for path := range fs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns an independent copy of the file set.
func (fs FileSet) Clone() FileSet {
	out := make(FileSet, len(fs))
	for path, content := range fs {
		out[path] = content
	}
	return out
}

// LoadFileSet reads the given paths from disk into a file set.
func LoadFileSet(paths []string) (FileSet, error) {
	fs := make(FileSet, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fs[path] = string(content)
	}
	return fs, nil
}

// WriteFileSet writes every file in the set back to disk.
func WriteFileSet(fs FileSet) error {
	for _, path := range fs.Paths() {
		if err := os.WriteFile(path, []byte(fs[path]), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
