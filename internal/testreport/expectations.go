package testreport

import (
	"fmt"

	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/vfs"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// KnownFailure marks a test that is expected to fail. An empty Package
// matches the test name in every package.
type KnownFailure struct {
	Package string `toml:"package"`
	Test    string `toml:"test"`
	Reason  string `toml:"reason"`
}

// Expectations lists known failures, loaded from a TOML file such as
//
//	[[known_failure]]
//	package = "example.com/net"
//	test = "TestDialIPv6"
//	reason = "no IPv6 on CI workers"
type Expectations struct {
	KnownFailures []KnownFailure `toml:"known_failure"`
}

// LoadExpectations reads an expectations file through fsys.
func LoadExpectations(fsys vfs.FS, name string) (*Expectations, error) {
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		logger.L().Error("failed to read expectations file", zap.String("path", name), zap.Error(err))
		return nil, fmt.Errorf("failed to read expectations file %s: %w", name, err)
	}

	exp, err := ParseExpectations(data)
	if err != nil {
		logger.L().Error("failed to parse expectations file", zap.String("path", name), zap.Error(err))
		return nil, fmt.Errorf("invalid expectations file %s: %w", name, err)
	}

	logger.L().Debug("expectations loaded", zap.String("path", name), zap.Int("known_failures", len(exp.KnownFailures)))
	return exp, nil
}

// ParseExpectations decodes TOML expectations.
func ParseExpectations(data []byte) (*Expectations, error) {
	var exp Expectations
	if err := toml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
	}

	for i, kf := range exp.KnownFailures {
		if kf.Test == "" {
			return nil, fmt.Errorf("known_failure #%d has no test name", i+1)
		}
	}

	return &exp, nil
}

// Lookup returns the known failure entry for a test, if any. A nil receiver
// has no entries.
func (e *Expectations) Lookup(pkg, test string) (KnownFailure, bool) {
	if e == nil {
		return KnownFailure{}, false
	}
	for _, kf := range e.KnownFailures {
		if kf.Test == test && (kf.Package == "" || kf.Package == pkg) {
			return kf, true
		}
	}
	return KnownFailure{}, false
}
