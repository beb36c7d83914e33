// Package logger holds the process-wide zap logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	l    *zap.Logger
	once sync.Once
	logW io.WriteCloser
)

// Config describes where and how much to log.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	OutputFile string // empty = stderr
}

// Init builds the global logger. Only the first call has any effect.
//
// Without an output file the logger writes to stderr: stdout carries test
// reports and generated sources, which must stay machine readable.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		var lvl zapcore.Level
		if err = lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
			lvl = zapcore.InfoLevel
			err = nil
		}

		var enc zapcore.Encoder
		if cfg.Format == "json" {
			enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		} else {
			encCfg := zap.NewDevelopmentEncoderConfig()
			if cfg.OutputFile == "" {
				encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			enc = zapcore.NewConsoleEncoder(encCfg)
		}

		var ws zapcore.WriteSyncer
		if cfg.OutputFile == "" {
			ws = zapcore.Lock(os.Stderr)
		} else {
			dir := filepath.Dir(cfg.OutputFile)
			if dir != "." {
				if err = os.MkdirAll(dir, 0755); err != nil {
					return
				}
			}
			logW, err = os.OpenFile(cfg.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return
			}
			ws = zapcore.AddSync(logW)
		}

		l = zap.New(zapcore.NewCore(enc, ws, lvl))
	})

	return err
}

// L returns the global logger. It panics before Init.
func L() *zap.Logger {
	if l == nil {
		panic("logger not initialised. Call logger.Init() first")
	}
	return l
}

// Named returns a child of the global logger, or a no-op logger before Init.
func Named(name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(name)
}

// Sync flushes buffers and closes the log file.
func Sync() {
	if l != nil {
		_ = l.Sync()
	}
	if logW != nil {
		_ = logW.Close()
	}
}
