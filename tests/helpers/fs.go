// Package helpers - fs provides utility functions for filesystem operations in tests.
package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/vfs"
	"github.com/spf13/afero"
)

type TestFS struct {
	Root string
}

func NewTestFS(t *testing.T) *TestFS {
	t.Helper()
	return &TestFS{Root: t.TempDir()}
}

func (fs *TestFS) Path(parts ...string) string {
	return filepath.Join(append([]string{fs.Root}, parts...)...)
}

func (fs *TestFS) Write(rel string, content string) {
	path := fs.Path(rel)
	os.MkdirAll(filepath.Dir(path), 0755)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		panic(err)
	}
}

func (fs *TestFS) Read(rel string) string {
	data, err := os.ReadFile(fs.Path(rel))
	if err != nil {
		panic(err)
	}
	return string(data)
}

// MockFS returns a virtual file store over an in-memory disk. It is closed
// when the test ends.
func MockFS(t *testing.T, files map[string]vfs.Entry, opts ...vfs.Option) *vfs.Mock {
	t.Helper()

	opts = append([]vfs.Option{
		vfs.WithFallback(vfs.FromAfero(afero.NewMemMapFs())),
		vfs.WithLogger(logger.Named("vfs")),
	}, opts...)
	m := vfs.NewMock(files, opts...)
	t.Cleanup(func() { m.Close() })
	return m
}
