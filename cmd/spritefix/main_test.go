package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	input := writeSheet(t, dir)

	require.Equal(t, 0, run([]string{"-h"}))
	require.Equal(t, 1, run(nil), "missing input")
	require.Equal(t, 1, run([]string{"-t", "0", input}), "invalid config")
	require.Equal(t, 1, run([]string{filepath.Join(dir, "missing.png")}))
	require.Equal(t, 0, run([]string{"-mode", "analyze", "-cols", "2", "-rows", "1", input}))
}

func TestRun_BatchFailureIsLoggedAndReported(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))
	logFile := filepath.Join(t.TempDir(), "run.log")

	code := run([]string{"-mode", "analyze", "-cols", "2", "-rows", "1", "-log-file", logFile, dir})
	require.Equal(t, 1, code)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "file failed")
	require.Contains(t, string(data), "broken.png")
	require.Contains(t, string(data), "batch complete")
	require.Contains(t, string(data), "succeeded=1")
}
