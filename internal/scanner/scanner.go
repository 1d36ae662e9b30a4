package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Scanner enumerates candidate documents under a root directory.
type Scanner struct {
	extensions map[string]struct{}
}

func New(extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = []string{".pdf"}
	}
	accepted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		accepted[strings.ToLower(ext)] = struct{}{}
	}
	return &Scanner{extensions: accepted}
}

// Scan walks root recursively and returns the absolute paths of all files
// whose extension is accepted. Unreadable entries are logged and skipped;
// a single bad directory never aborts the scan. WalkDir visits entries in
// lexical order, so the result is stable for a given tree.
func (s *Scanner) Scan(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			zap.S().Named("scanner").Warnf("skipping unreadable entry %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.extensions[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
