package thirdparty

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/vfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(logger.Config{
		Level:  "info",
		Format: "console",
	})
}

const wantSource = `/* THIS FILE IS GENERATED BY ThirdPartyPaths.py - DO NOT EDIT */

#include <stdint.h>

const char* MOZ_THIRD_PARTY_PATHS[] = {
  "gfx/skia",
  "media/libvpx",
  "js/src/ctypes/libffi"
};

extern const uint32_t MOZ_THIRD_PARTY_PATHS_COUNT = 3;

`

// TestParsePaths tests trimming and trailing slash handling.
func TestParsePaths(t *testing.T) {
	paths, err := ParsePaths(strings.NewReader("gfx/skia/\n  media/libvpx  \n\nlib//\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"gfx/skia", "media/libvpx", "", "lib/"}, paths)
}

// TestParsePathsLongLine tests lines longer than the default scanner buffer.
func TestParsePathsLongLine(t *testing.T) {
	long := strings.Repeat("x", 70000)

	paths, err := ParsePaths(strings.NewReader("a\n" + long + "/\nb\n"))
	require.NoError(t, err)

	require.Len(t, paths, 3)
	assert.Equal(t, long, paths[1])
	assert.Equal(t, "b", paths[2])
}

// TestGenerate tests the generated source layout.
func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, []string{"gfx/skia", "media/libvpx", "js/src/ctypes/libffi"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, wantSource, buf.String())
}

// TestGenerateCustomNames tests overriding symbol names.
func TestGenerateCustomNames(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, nil, Options{ArrayName: "PATHS", CountName: "PATHS_N", Generator: "bshim"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "GENERATED BY bshim - DO NOT EDIT")
	assert.Contains(t, out, "const char* PATHS[] = {\n  \n};")
	assert.Contains(t, out, "extern const uint32_t PATHS_N = 0;")
}

// TestQuoteJSON tests string literal escaping.
func TestQuoteJSON(t *testing.T) {
	for in, want := range map[string]string{
		"plain/path":      `"plain/path"`,
		`a"b\c`:           `"a\"b\\c"`,
		"tab\there":       `"tab\there"`,
		"<a&b>":           `"<a&b>"`,
		"caf\u00e9":       `"caf\u00e9"`,
		"\x01":            `"\u0001"`,
		"\x7f":            `"\u007f"`,
		"emoji\U0001F600": `"emoji\ud83d\ude00"`,
	} {
		assert.Equal(t, want, quoteJSON(in), "input %q", in)
	}
}

// TestGenerateFileThroughMock runs the whole generator against a virtual
// filesystem and checks that the disk is left alone.
func TestGenerateFileThroughMock(t *testing.T) {
	disk := afero.NewMemMapFs()
	m := vfs.NewMock(map[string]vfs.Entry{
		"tools/rewriting/ThirdPartyPaths.txt": vfs.Present("gfx/skia/\nmedia/libvpx\njs/src/ctypes/libffi/\n"),
	}, vfs.WithFallback(vfs.FromAfero(disk)), vfs.WithLogger(logger.Named("vfs")))
	defer m.Close()

	err := GenerateFile(m, "tools/rewriting/ThirdPartyPaths.txt", "obj/ThirdPartyPaths.cpp", Options{})
	require.NoError(t, err)

	assert.True(t, m.IsFile("obj/ThirdPartyPaths.cpp"))
	assert.True(t, m.IsDir("obj"))

	data, err := vfs.ReadFile(m, "obj/ThirdPartyPaths.cpp")
	require.NoError(t, err)
	assert.Equal(t, wantSource, string(data))

	exists, err := afero.DirExists(disk, "obj")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestGenerateFileMissingInput tests that an absent list is reported.
func TestGenerateFileMissingInput(t *testing.T) {
	m := vfs.NewMock(map[string]vfs.Entry{
		"ThirdPartyPaths.txt": vfs.Absent(),
	}, vfs.WithFallback(vfs.FromAfero(afero.NewMemMapFs())))
	defer m.Close()

	err := GenerateFile(m, "ThirdPartyPaths.txt", "out.cpp", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, m.Exists("out.cpp"))
}
