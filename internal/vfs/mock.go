package vfs

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Mock is an FS whose paths can be overridden by virtual entries.
//
// Paths with an entry are served from memory. Every other path is passed to
// a fallback FS, the real filesystem by default. Writes never reach the
// fallback: opening for write returns an in-memory handle whose content is
// recorded when it is closed.
//
// A Mock is active until Close. After that the store is discarded and every
// call goes straight to the fallback.
type Mock struct {
	mu       sync.RWMutex
	files    map[string]Entry
	closed   bool
	fallback FS
	log      *zap.Logger
}

// Option configures a Mock.
type Option func(*Mock)

// WithFallback sets the FS consulted for paths without a virtual entry.
func WithFallback(fallback FS) Option {
	return func(m *Mock) {
		m.fallback = fallback
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mock) {
		m.log = l
	}
}

// NewMock returns a Mock seeded with files. Relative keys are resolved
// against the current working directory.
func NewMock(files map[string]Entry, opts ...Option) *Mock {
	m := &Mock{
		files:    make(map[string]Entry, len(files)),
		fallback: NewOSFS(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	for name, entry := range files {
		m.files[key(name)] = entry
	}

	m.log.Debug("virtual file store created", zap.Int("entries", len(m.files)))
	return m
}

// WithMock runs fn against a new Mock and closes it when fn returns or
// panics.
func WithMock(files map[string]Entry, fn func(m *Mock) error, opts ...Option) error {
	m := NewMock(files, opts...)
	defer m.Close()

	return fn(m)
}

// Close ends the session. It never fails.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.log.Debug("virtual file store discarded", zap.Int("entries", len(m.files)))
	}
	m.closed = true
	m.files = nil
	return nil
}

// Files returns a copy of the store, keyed by normalised absolute path.
func (m *Mock) Files() map[string]Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Entry, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}

func (m *Mock) active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed
}

func (m *Mock) lookup(k string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.files[k]
	return e, ok
}

func (m *Mock) commit(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.files[name] = Present(content)
	m.log.Debug("virtual file committed", zap.String("path", name), zap.Int("bytes", len(content)))
}

// Open implements FS.
func (m *Mock) Open(name, mode string) (File, error) {
	if !m.active() {
		return m.fallback.Open(name, mode)
	}
	if mode == "" {
		mode = ModeRead
	}

	abs := key(name)

	if isWriteMode(mode) {
		m.log.Debug("virtual open for write", zap.String("path", abs))
		return newMemFile(abs, "", true, m.commit), nil
	}

	appending := isAppendMode(mode)

	if entry, ok := m.lookup(abs); ok {
		content, present := entry.Content()
		if !present {
			m.log.Debug("virtual open of absent path", zap.String("path", abs))
			return nil, absentError(name)
		}

		f := newMemFile(abs, content, appending || strings.Contains(mode, "+"), m.commit)
		if appending {
			f.Seek(0, io.SeekEnd)
		}
		return f, nil
	}

	if appending {
		prior, err := m.readThrough(name)
		if err != nil {
			return nil, err
		}

		f := newMemFile(abs, prior, true, m.commit)
		f.Seek(0, io.SeekEnd)
		m.log.Debug("virtual open for append", zap.String("path", abs), zap.Int("seeded", len(prior)))
		return f, nil
	}

	return m.fallback.Open(name, mode)
}

// readThrough reads name through the mock itself. A path that exists nowhere
// reads as empty, the same as appending to a new file on disk. This differs
// from a plain read-then-append, which would fail with not-found; callers that
// need that check should test Exists first.
func (m *Mock) readThrough(name string) (string, error) {
	data, err := ReadFile(m, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// IsFile implements FS.
func (m *Mock) IsFile(name string) bool {
	if !m.active() {
		return m.fallback.IsFile(name)
	}

	if entry, ok := m.lookup(normcase(name)); ok {
		return !entry.IsAbsent()
	}
	if entry, ok := m.lookup(key(name)); ok {
		return !entry.IsAbsent()
	}

	return m.fallback.IsFile(name)
}

// IsDir implements FS. A path is a virtual directory when some recorded key,
// absent or not, lies beneath it.
func (m *Mock) IsDir(name string) bool {
	if !m.active() {
		return m.fallback.IsDir(name)
	}

	if m.hasPrefix(dirPrefix(normcase(name))) {
		return true
	}
	if m.hasPrefix(dirPrefix(key(name))) {
		return true
	}

	return m.fallback.IsDir(name)
}

// Exists implements FS.
func (m *Mock) Exists(name string) bool {
	return m.IsFile(name) || m.IsDir(name)
}

func (m *Mock) hasPrefix(prefix string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

var _ FS = (*Mock)(nil)
