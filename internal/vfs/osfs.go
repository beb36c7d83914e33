package vfs

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// OSFS is the real filesystem, reached through an afero.Fs.
type OSFS struct {
	fs afero.Fs
}

// NewOSFS returns an OSFS backed by the operating system.
func NewOSFS() *OSFS {
	return &OSFS{fs: afero.NewOsFs()}
}

// FromAfero wraps any afero.Fs. Tests use afero.NewMemMapFs to stand in for
// the disk.
func FromAfero(fs afero.Fs) *OSFS {
	return &OSFS{fs: fs}
}

// Open maps mode onto os flags the way fopen does: "w" truncates, "a"
// appends, and '+' adds the other direction.
func (o *OSFS) Open(name, mode string) (File, error) {
	f, err := o.fs.OpenFile(name, openFlags(mode), 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (o *OSFS) Exists(name string) bool {
	_, err := o.fs.Stat(name)
	return err == nil
}

func (o *OSFS) IsFile(name string) bool {
	fi, err := o.fs.Stat(name)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

func (o *OSFS) IsDir(name string) bool {
	ok, err := afero.IsDir(o.fs, name)
	return err == nil && ok
}

func openFlags(mode string) int {
	plus := strings.Contains(mode, "+")

	switch {
	case isWriteMode(mode):
		if plus {
			return os.O_RDWR | os.O_CREATE | os.O_TRUNC
		}
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case isAppendMode(mode):
		if plus {
			return os.O_RDWR | os.O_CREATE | os.O_APPEND
		}
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case plus:
		return os.O_RDWR
	default:
		return os.O_RDONLY
	}
}

var _ FS = (*OSFS)(nil)
