package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Recursive enables descending into subdirectories
	Recursive bool
	// IncludeHidden descends into directories whose name starts with "."
	IncludeHidden bool
	// ExcludeDirs is a list of directory names to skip (e.g., ".git", "node_modules")
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = root only)
	MaxDepth int
}

// DefaultScanOptions lists every file at any depth, hidden directories included.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Recursive:     true,
		IncludeHidden: true,
	}
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the absolute paths of all listed files, sorted
	Files []string
	// Errors contains non-fatal errors encountered below the root
	Errors []error
}

// ScanDirectory lists the files under dir according to opts.
// An error is returned only when dir itself cannot be walked.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}
	// WalkDir does not follow a symlinked root.
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = true
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}

		if path == root {
			return nil
		}

		if d.IsDir() {
			return descend(root, path, d.Name(), opts, excluded)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("broken link %s: %w", path, err))
				return nil
			}
			if target.IsDir() {
				return nil
			}
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)

	return result, nil
}

// descend decides whether the walk enters the directory at path.
func descend(root, path, name string, opts ScanOptions, excluded map[string]bool) error {
	if !opts.Recursive || excluded[name] {
		return filepath.SkipDir
	}
	if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return filepath.SkipDir
	}

	if opts.MaxDepth > 0 {
		rel, _ := filepath.Rel(root, path)
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth >= opts.MaxDepth {
			return filepath.SkipDir
		}
	}

	return nil
}
