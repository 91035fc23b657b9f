package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoTests indicates that no test files were found during discovery.
var ErrNoTests = errors.New("no test files discovered")

// Tests returns the test files under root matching any of patterns. Patterns
// use doublestar syntax ("**" matches any number of directories) and are
// resolved relative to root unless absolute. Results are root-relative where
// possible, de-duplicated and sorted lexicographically.
func Tests(root string, patterns []string) ([]string, error) {
	matches := make(map[string]struct{})

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		var found []string
		var err error
		if filepath.IsAbs(pattern) {
			found, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		} else {
			pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
			found, err = doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
			for i := range found {
				found[i] = filepath.Join(root, filepath.FromSlash(found[i]))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range found {
			matches[mustRelOrClean(root, m)] = struct{}{}
		}
	}

	if len(matches) == 0 {
		return nil, ErrNoTests
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths, nil
}

// Explicit validates a single test file given on the command line and returns
// its root-relative path where possible.
func Explicit(root, input string) (string, error) {
	cleaned := input
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(root, cleaned)
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("test file not found: %s", cleaned)
		}
		return "", fmt.Errorf("stat %q: %w", input, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("test file %q is a directory", input)
	}
	return mustRelOrClean(root, cleaned), nil
}

// Abs joins a discovered path with root unless it is already absolute.
func Abs(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
