// Package vfs provides a filesystem capability interface and an in-memory
// mock of it.
//
// Code that reads or writes files takes an [FS]. Production code passes
// [NewOSFS]. Tests pass a [Mock] seeded with virtual entries, which can make
// paths appear, disappear or change content without touching the disk:
//
//	m := vfs.NewMock(map[string]vfs.Entry{
//		"foo":     vfs.Present("hello"),
//		"ignored": vfs.Absent(),
//	})
//	defer m.Close()
//
//	f, _ := m.Open("foo", vfs.ModeRead)
package vfs

import (
	"io"
	"strings"
)

// Open modes. A mode containing 'w' opens for writing, one containing 'a'
// opens for appending and anything else opens for reading. The empty mode
// reads. Extra flags such as 'b' or '+' are accepted and ignored by the mock.
const (
	ModeRead   = "r"
	ModeWrite  = "w"
	ModeAppend = "a"
)

// File is an open file handle.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Name returns the name the file was opened under.
	Name() string
}

// FS is the set of filesystem primitives the rest of the module uses.
type FS interface {
	// Open opens name with the given mode.
	Open(name, mode string) (File, error)

	// Exists reports whether name is a file or a directory.
	Exists(name string) bool

	// IsFile reports whether name is a regular file.
	IsFile(name string) bool

	// IsDir reports whether name is a directory.
	IsDir(name string) bool
}

// Entry is the content of a virtual path: either some text, or an explicit
// marker saying the path does not exist.
type Entry struct {
	content string
	absent  bool
}

// Present returns an entry for a file holding content.
func Present(content string) Entry {
	return Entry{content: content}
}

// Absent returns an entry marking a path as non-existent, whatever the real
// filesystem holds.
func Absent() Entry {
	return Entry{absent: true}
}

// IsAbsent reports whether e is the absent marker.
func (e Entry) IsAbsent() bool {
	return e.absent
}

// Content returns the entry text. ok is false for absent entries.
func (e Entry) Content() (content string, ok bool) {
	if e.absent {
		return "", false
	}
	return e.content, true
}

func (e Entry) String() string {
	if e.absent {
		return "<absent>"
	}
	return e.content
}

func isWriteMode(mode string) bool {
	return strings.Contains(mode, "w")
}

func isAppendMode(mode string) bool {
	return strings.Contains(mode, "a")
}

// ReadFile reads the whole of name from fsys.
func ReadFile(fsys FS, name string) ([]byte, error) {
	f, err := fsys.Open(name, ModeRead)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile replaces the content of name in fsys with data.
func WriteFile(fsys FS, name string, data []byte) error {
	f, err := fsys.Open(name, ModeWrite)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
