// Package scanner finds slice documents under a root directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPattern matches slice documents.
const DefaultPattern = "*.json"

// Scanner finds slice files in a directory tree.
type Scanner struct {
	pattern string
}

// NewScanner creates a scanner matching base names against pattern.
func NewScanner(pattern string) *Scanner {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Scanner{pattern: pattern}
}

// ScanDir recursively scans root for matching files and returns them sorted.
// Symlinks resolving outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	if _, err := filepath.Match(s.pattern, ""); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, 1024)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if ok, _ := filepath.Match(s.pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// separator suffix prevents "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
