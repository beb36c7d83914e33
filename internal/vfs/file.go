package vfs

import (
	"errors"
	"io"
	"io/fs"
)

// memFile is an in-memory file handle. Writable handles hand their final
// content to commit when closed.
type memFile struct {
	name     string
	data     []byte
	off      int64
	writable bool
	closed   bool
	commit   func(name, content string)
}

func newMemFile(name, content string, writable bool, commit func(name, content string)) *memFile {
	return &memFile{
		name:     name,
		data:     []byte(content),
		writable: writable,
		commit:   commit,
	}
}

func (f *memFile) Name() string {
	return f.name
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: errClosed}
	}
	if f.off >= int64(len(f.data)) {
		return 0, io.EOF
	}

	n := copy(p, f.data[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: errClosed}
	}
	if !f.writable {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: fs.ErrPermission}
	}

	end := f.off + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}

	copy(f.data[f.off:], p)
	f.off = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: errClosed}
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.data)) + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: errors.New("invalid whence")}
	}

	if abs < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: errors.New("negative position")}
	}

	f.off = abs
	return abs, nil
}

// Close commits writable content. Closing twice is an error, like os.File.
func (f *memFile) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.name, Err: errClosed}
	}
	f.closed = true

	if f.writable && f.commit != nil {
		f.commit(f.name, string(f.data))
	}
	return nil
}
