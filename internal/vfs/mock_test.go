package vfs

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestMock returns a mock whose "real" filesystem is an in-memory afero
// fs, so nothing here touches the disk.
func newTestMock(t *testing.T, files map[string]Entry) (*Mock, afero.Fs) {
	t.Helper()

	disk := afero.NewMemMapFs()
	m := NewMock(files, WithFallback(FromAfero(disk)))
	t.Cleanup(func() { m.Close() })
	return m, disk
}

func readAll(t *testing.T, fsys FS, name string) string {
	t.Helper()

	data, err := ReadFile(fsys, name)
	require.NoError(t, err)
	return string(data)
}

// TestMockReadVirtualFile checks that a virtual entry is served from memory
// and that unknown paths go to the real filesystem.
func TestMockReadVirtualFile(t *testing.T) {
	m, _ := newTestMock(t, map[string]Entry{"foo": Present("hello")})

	assert.Equal(t, "hello", readAll(t, m, "foo"))

	_, err := m.Open("bar", ModeRead)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrAbsent), "real misses must not look virtual")
}

// TestMockDefersToFallback checks that paths without an entry are read from
// the fallback unchanged.
func TestMockDefersToFallback(t *testing.T) {
	m, disk := newTestMock(t, nil)
	require.NoError(t, afero.WriteFile(disk, "real.txt", []byte("on disk"), 0o644))

	assert.Equal(t, "on disk", readAll(t, m, "real.txt"))
	assert.True(t, m.IsFile("real.txt"))
	assert.True(t, m.Exists("real.txt"))
}

// TestMockAbsentHidesRealFile checks that the absent marker wins over a real
// file with the same name.
func TestMockAbsentHidesRealFile(t *testing.T) {
	m, disk := newTestMock(t, map[string]Entry{"foo": Absent()})
	require.NoError(t, afero.WriteFile(disk, "foo", []byte("real"), 0o644))
	require.NoError(t, afero.WriteFile(disk, key("foo"), []byte("real"), 0o644))

	assert.False(t, m.IsFile("foo"))
	assert.False(t, m.Exists("foo"))

	_, err := m.Open("foo", ModeRead)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAbsent))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var pathErr *fs.PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "foo", pathErr.Path)

	_, err = m.Open("foo", ModeAppend)
	assert.True(t, errors.Is(err, ErrAbsent))
}

// TestMockWriteThenRead checks that written content is visible after Close
// and never reaches the real filesystem.
func TestMockWriteThenRead(t *testing.T) {
	m, disk := newTestMock(t, nil)

	f, err := m.Open("newfile", ModeWrite)
	require.NoError(t, err)
	_, err = io.WriteString(f, "some bytes")
	require.NoError(t, err)

	// Not visible until the writer is closed.
	assert.False(t, m.IsFile("newfile"))

	require.NoError(t, f.Close())

	assert.True(t, m.IsFile("newfile"))
	assert.Equal(t, "some bytes", readAll(t, m, "newfile"))

	exists, err := afero.Exists(disk, "newfile")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = afero.Exists(disk, key("newfile"))
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestMockWriteReplacesEntry checks that write mode starts empty even when
// the path already has content or is marked absent.
func TestMockWriteReplacesEntry(t *testing.T) {
	m, _ := newTestMock(t, map[string]Entry{
		"full": Present("old content"),
		"gone": Absent(),
	})

	require.NoError(t, WriteFile(m, "full", []byte("new")))
	require.NoError(t, WriteFile(m, "gone", []byte("back")))

	assert.Equal(t, "new", readAll(t, m, "full"))
	assert.Equal(t, "back", readAll(t, m, "gone"))
	assert.True(t, m.IsFile("gone"))
}

// TestMockAppend covers appending to virtual, real and missing files.
func TestMockAppend(t *testing.T) {
	m, disk := newTestMock(t, map[string]Entry{"virtual": Present("ab")})
	require.NoError(t, afero.WriteFile(disk, "real", []byte("12"), 0o644))

	for _, tc := range []struct {
		name string
		want string
	}{
		{name: "virtual", want: "abcd"},
		{name: "real", want: "12cd"},
		{name: "missing", want: "cd"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := m.Open(tc.name, ModeAppend)
			require.NoError(t, err)
			_, err = io.WriteString(f, "cd")
			require.NoError(t, err)
			require.NoError(t, f.Close())

			assert.Equal(t, tc.want, readAll(t, m, tc.name))
		})
	}

	data, err := afero.ReadFile(disk, "real")
	require.NoError(t, err)
	assert.Equal(t, "12", string(data))
}

// TestMockReadHandleIsReadOnly checks that plain read handles reject writes
// and leave the store alone.
func TestMockReadHandleIsReadOnly(t *testing.T) {
	m, _ := newTestMock(t, map[string]Entry{"foo": Present("hello")})

	f, err := m.Open("foo", "")
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	require.NoError(t, f.Close())

	f, err = m.Open("foo", "r+")
	require.NoError(t, err)
	_, err = f.Write([]byte("J"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "Jello", readAll(t, m, "foo"))
}

// TestMockIsDir checks directory detection by separator-bounded prefix.
func TestMockIsDir(t *testing.T) {
	m, _ := newTestMock(t, map[string]Entry{"sub/file.txt": Present("x")})
	assert.True(t, m.IsDir("sub"))
	assert.True(t, m.IsDir("sub/"))
	assert.True(t, m.IsDir(key("sub")))
	assert.True(t, m.Exists("sub"))
	assert.False(t, m.IsFile("sub"))

	m, _ = newTestMock(t, map[string]Entry{"subfile.txt": Present("x")})
	assert.False(t, m.IsDir("sub"))
	assert.False(t, m.Exists("sub"))
}

// TestMockIsDirIncludesAbsentEntries checks that an absent file still implies
// its parent directory.
func TestMockIsDirIncludesAbsentEntries(t *testing.T) {
	m, _ := newTestMock(t, map[string]Entry{"sub/gone.txt": Absent()})
	assert.True(t, m.IsDir("sub"))
	assert.False(t, m.Exists("sub/gone.txt"))
}

// TestMockIsDirFallback checks that real directories are still reported.
func TestMockIsDirFallback(t *testing.T) {
	m, disk := newTestMock(t, nil)
	require.NoError(t, disk.MkdirAll("realdir", 0o755))

	assert.True(t, m.IsDir("realdir"))
	assert.True(t, m.Exists("realdir"))
	assert.False(t, m.IsDir("nowhere"))
}

// TestMockKeysAreAbsolute checks that relative and absolute spellings of a
// path reach the same entry.
func TestMockKeysAreAbsolute(t *testing.T) {
	abs, err := filepath.Abs("data/x.txt")
	require.NoError(t, err)

	m, _ := newTestMock(t, map[string]Entry{"data/../data/x.txt": Present("x")})

	files := m.Files()
	require.Contains(t, files, abs)
	assert.Equal(t, "x", readAll(t, m, abs))
	assert.Equal(t, "x", readAll(t, m, "data/x.txt"))
	assert.True(t, m.IsFile(abs))
	assert.True(t, m.IsFile("./data/x.txt"))
}

// TestMockCaseFolding checks that case is folded on case-insensitive
// platforms while separators are left alone.
func TestMockCaseFolding(t *testing.T) {
	saved := caseInsensitive
	caseInsensitive = true
	t.Cleanup(func() { caseInsensitive = saved })

	m, _ := newTestMock(t, map[string]Entry{
		"Dir/File.TXT":   Present("folded"),
		`Other\Name.txt`: Present("backslash"),
	})

	assert.Equal(t, "folded", readAll(t, m, "dir/file.txt"))
	assert.Equal(t, "folded", readAll(t, m, "DIR/FILE.txt"))
	assert.True(t, m.IsDir("DIR"))

	if filepath.Separator == '/' {
		// The backslash is part of the name, not a separator.
		assert.False(t, m.IsDir("other"))
		assert.True(t, m.IsFile(`other\name.txt`))
	}
}

// TestMockCloseRestoresFallback checks that once a session ends every call
// resolves through the real filesystem.
func TestMockCloseRestoresFallback(t *testing.T) {
	disk := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(disk, "foo", []byte("real"), 0o644))

	m := NewMock(map[string]Entry{
		"foo":       Absent(),
		"bar":       Present("virtual"),
		"sub/a.txt": Present("a"),
	}, WithFallback(FromAfero(disk)))

	w, err := m.Open("late", ModeWrite)
	require.NoError(t, err)

	require.NoError(t, m.Close())

	assert.Equal(t, "real", readAll(t, m, "foo"))
	assert.True(t, m.IsFile("foo"))
	assert.False(t, m.IsFile("bar"))
	assert.False(t, m.IsDir("sub"))
	assert.False(t, m.Exists("bar"))
	assert.Empty(t, m.Files())

	// A writer left open across the end of the session commits nowhere.
	_, err = io.WriteString(w, "x")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.False(t, m.IsFile("late"))
}

// TestWithMockClosesOnError checks the scoped helper on the error path.
func TestWithMockClosesOnError(t *testing.T) {
	disk := afero.NewMemMapFs()
	var inner *Mock
	boom := errors.New("boom")

	err := WithMock(map[string]Entry{"foo": Present("virtual")}, func(m *Mock) error {
		inner = m
		assert.True(t, m.IsFile("foo"))
		return boom
	}, WithFallback(FromAfero(disk)))

	assert.ErrorIs(t, err, boom)
	assert.False(t, inner.IsFile("foo"))
}

// TestWithMockClosesOnPanic checks the scoped helper when the body panics.
func TestWithMockClosesOnPanic(t *testing.T) {
	disk := afero.NewMemMapFs()
	var inner *Mock

	assert.Panics(t, func() {
		_ = WithMock(map[string]Entry{"foo": Present("virtual")}, func(m *Mock) error {
			inner = m
			panic("boom")
		}, WithFallback(FromAfero(disk)))
	})

	require.NotNil(t, inner)
	assert.False(t, inner.IsFile("foo"))
	_, err := inner.Open("foo", ModeRead)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrAbsent))
}

// TestMocksAreIndependent checks that two stores do not see each other.
func TestMocksAreIndependent(t *testing.T) {
	a, _ := newTestMock(t, map[string]Entry{"shared": Present("a")})
	b, _ := newTestMock(t, map[string]Entry{"shared": Present("b")})

	t.Run("a", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a", readAll(t, a, "shared"))
	})
	t.Run("b", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "b", readAll(t, b, "shared"))
	})
}

// TestMockLogsCommits checks that writes are traced through the injected logger.
func TestMockLogsCommits(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMock(nil, WithFallback(FromAfero(afero.NewMemMapFs())), WithLogger(zap.New(core)))
	defer m.Close()

	require.NoError(t, WriteFile(m, "out/gen.cpp", []byte("int x;")))

	committed := logs.FilterMessage("virtual file committed").All()
	require.Len(t, committed, 1)

	fields := committed[0].ContextMap()
	assert.Equal(t, key("out/gen.cpp"), fields["path"])
	assert.EqualValues(t, 6, fields["bytes"])

	m.Close()
	assert.Equal(t, 1, logs.FilterMessage("virtual file store discarded").Len())
}
