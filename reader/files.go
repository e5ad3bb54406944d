package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFilePattern is the glob DirLister uses when Pattern is empty.
const DefaultFilePattern = "*.pdf"

// DirLister lists downloadable files under Root. Directory names passed to
// ListFiles are relative to Root.
type DirLister struct {
	Root    string
	Pattern string
}

// ListFiles returns the sorted base names of files in dir matching the
// lister's pattern. A missing directory yields an empty list.
func (l DirLister) ListFiles(dir string) ([]string, error) {
	full := filepath.Join(l.Root, filepath.Clean("/"+dir))
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", full, err)
	}

	pattern := l.Pattern
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	matches, err := doublestar.Glob(os.DirFS(full), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	sort.Strings(names)
	return names, nil
}
