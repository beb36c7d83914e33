package vfs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// caseInsensitive is true on platforms whose paths compare without case.
var caseInsensitive = runtime.GOOS == "windows"

// normcase folds the case of path on case-insensitive platforms.
//
// filepath has no equivalent that leaves separators alone, and keys must keep
// their slash direction so "a/b" and "a\b" stay distinct.
func normcase(path string) string {
	if caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

// absPath returns the absolute, cleaned form of path. If the working
// directory cannot be determined the cleaned path is returned as is.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// key returns the store key for path.
func key(path string) string {
	return normcase(absPath(path))
}

// dirPrefix returns path with exactly one trailing separator.
func dirPrefix(path string) string {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return path
	}
	return path + string(os.PathSeparator)
}
