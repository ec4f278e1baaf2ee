package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/spritefix/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer
	l, err := newLogger(&cfg, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.Info("processing", "file", "walk.png")
	l.Warn("high jitter", "std_x", 3.5)
	out := buf.String()
	require.NotContains(t, out, "processing")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "std_x=3.5")
}

func TestNewLogger_FileSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "spritefix.log")
	var buf bytes.Buffer
	l, err := newLogger(&cfg, &buf)
	require.NoError(t, err)
	l.Info("saved", "path", "walk_final.png")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "path=walk_final.png")
	require.Equal(t, buf.String(), string(data))
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "chatty"
	_, err := newLogger(&cfg, &bytes.Buffer{})
	require.Error(t, err)
}
