// Package thirdparty generates the C++ source that lists third-party paths
// for the clang plugin, so it can skip diagnostics in vendored code.
package thirdparty

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/vfs"
	"go.uber.org/zap"
)

const (
	DefaultArrayName = "MOZ_THIRD_PARTY_PATHS"
	DefaultCountName = "MOZ_THIRD_PARTY_PATHS_COUNT"
	DefaultGenerator = "ThirdPartyPaths.py"
)

// Options controls the names used in the generated source.
type Options struct {
	ArrayName string
	CountName string
	Generator string // named in the DO NOT EDIT banner
}

func (o Options) withDefaults() Options {
	if o.ArrayName == "" {
		o.ArrayName = DefaultArrayName
	}
	if o.CountName == "" {
		o.CountName = DefaultCountName
	}
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	return o
}

const sourceTemplate = `/* THIS FILE IS GENERATED BY %s - DO NOT EDIT */

#include <stdint.h>

const char* %s[] = {
  %s
};

extern const uint32_t %s = %d;

`

// ReadPaths reads the path list from name. Each line is trimmed and loses one
// trailing slash. Blank lines are kept as empty paths.
func ReadPaths(fsys vfs.FS, name string) ([]string, error) {
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		logger.L().Error("failed to read third-party path list", zap.String("path", name), zap.Error(err))
		return nil, fmt.Errorf("failed to read third-party path list %s: %w", name, err)
	}

	return ParsePaths(bytes.NewReader(data))
}

// ParsePaths parses a path list from r.
func ParsePaths(r io.Reader) ([]string, error) {
	var paths []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt32)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSuffix(line, "/")
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan path list: %w", err)
	}

	return paths, nil
}

// Generate writes the C++ source for paths to w.
func Generate(w io.Writer, paths []string, opts Options) error {
	opts = opts.withDefaults()

	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = quoteJSON(p)
	}

	_, err := fmt.Fprintf(w, sourceTemplate,
		opts.Generator,
		opts.ArrayName,
		strings.Join(quoted, ",\n  "),
		opts.CountName,
		len(paths),
	)
	return err
}

// GenerateFile reads the list at input and writes the source to output, both
// through fsys.
func GenerateFile(fsys vfs.FS, input, output string, opts Options) error {
	paths, err := ReadPaths(fsys, input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Generate(&buf, paths, opts); err != nil {
		return fmt.Errorf("failed to render third-party paths: %w", err)
	}

	if err := vfs.WriteFile(fsys, output, buf.Bytes()); err != nil {
		logger.L().Error("failed to write generated source", zap.String("path", output), zap.Error(err))
		return fmt.Errorf("failed to write generated source %s: %w", output, err)
	}

	logger.L().Info("third-party paths generated",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("paths", len(paths)),
	)
	return nil
}
