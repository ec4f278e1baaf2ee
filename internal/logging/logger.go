// Package logging builds the structured logger used by the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/setanarut/spritefix/internal/config"
)

// Logger is a slog.Logger with an optional file sink. Call Close when done.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New logs text records to stdout and, when cfg.LogFile is set, appends
// the same records to that file.
func New(cfg *config.Config) (*Logger, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *config.Config, out io.Writer) (*Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}

	l := &Logger{}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		out = io.MultiWriter(out, f)
	}
	l.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
