package vfs

import (
	"fmt"
	"io/fs"
)

// ErrAbsent is returned, wrapped in an [fs.PathError], when opening a path
// that is explicitly marked absent. It matches [fs.ErrNotExist].
var ErrAbsent = fmt.Errorf("virtual file not found: %w", fs.ErrNotExist)

// errClosed is returned by file operations after Close.
var errClosed = fs.ErrClosed

func absentError(name string) error {
	return &fs.PathError{Op: "open", Path: name, Err: ErrAbsent}
}
