// Package matchers implements the path predicates used to classify package
// entries against exclude, require and linkdir patterns.
package matchers

import (
	"path/filepath"
	"strings"
)

// Func reports whether path is matched by pattern.
type Func func(path, pattern string) bool

// Glob matches path against a shell pattern with pathname semantics:
// wildcards never match '/', and a leading period of any path component
// must be matched literally.
func Glob(path, pattern string) bool {
	matched, err := filepath.Match(pattern, path)
	if err != nil || !matched {
		return false
	}

	pathParts := strings.Split(path, "/")
	patternParts := strings.Split(pattern, "/")
	if len(pathParts) != len(patternParts) {
		return false
	}
	for i, part := range pathParts {
		if strings.HasPrefix(part, ".") && !leadingLiteralPeriod(patternParts[i]) {
			return false
		}
	}
	return true
}

func leadingLiteralPeriod(pattern string) bool {
	return strings.HasPrefix(pattern, ".") || strings.HasPrefix(pattern, `\.`)
}

// Exact matches only identical strings.
func Exact(path, pattern string) bool {
	return path == pattern
}

// Partial reports whether pattern, cut after the path component at the
// depth of path, matches path. It detects patterns naming something below
// path: "share/doc/foo/README" partially matches "share/doc".
func Partial(path, pattern string) bool {
	start := 0
	if dir := filepath.Dir(path); dir != "." {
		start = len(dir) + 1
	}
	if start < len(pattern) {
		if idx := strings.IndexByte(pattern[start:], '/'); idx >= 0 {
			pattern = pattern[:start+idx]
		}
	}
	return Glob(path, pattern)
}

// Any reports whether path is matched by at least one of patterns.
func Any(path string, patterns []string, match Func) bool {
	for _, pattern := range patterns {
		if match(path, pattern) {
			return true
		}
	}
	return false
}
