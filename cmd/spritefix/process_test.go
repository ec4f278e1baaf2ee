package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/spritefix/internal/config"
	"github.com/setanarut/spritefix/utils"
	"github.com/stretchr/testify/require"
)

var (
	backdrop = color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	sprite   = color.NRGBA{R: 220, G: 20, B: 20, A: 255}
)

// writeSheet saves a 16x8 sheet of two 8px frames, each holding a 2x2
// sprite at a different offset.
func writeSheet(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := range 8 {
		for x := range 16 {
			img.SetNRGBA(x, y, backdrop)
		}
	}
	for _, p := range []image.Point{{1, 2}, {12, 3}} {
		for y := p.Y; y < p.Y+2; y++ {
			for x := p.X; x < p.X+2; x++ {
				img.SetNRGBA(x, y, sprite)
			}
		}
	}
	path := filepath.Join(dir, "walk.png")
	require.NoError(t, utils.SaveImage(img, path))
	return path
}

func testProcessor(cfg *config.Config) *processor {
	return &processor{cfg: cfg, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestProcess_Pipeline(t *testing.T) {
	dir := t.TempDir()
	input := writeSheet(t, dir)

	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Cols, cfg.Rows, cfg.FrameSize = 2, 1, 8
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.FramesDir = filepath.Join(dir, "frames")
	cfg.Swatch = true
	require.NoError(t, cfg.Validate())
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))

	require.NoError(t, testProcessor(&cfg).process(context.Background(), input, ""))

	got, err := utils.ReadBuffer(filepath.Join(cfg.OutputDir, "walk_final.png"))
	require.NoError(t, err)
	require.Equal(t, image.Pt(16, 8), got.Rect.Size())
	for _, origin := range []int{0, 8} {
		require.Equal(t, sprite, got.NRGBAAt(origin+3, 3))
		require.Equal(t, sprite, got.NRGBAAt(origin+4, 4))
		require.Zero(t, got.NRGBAAt(origin+1, 2).A)
		require.Zero(t, got.NRGBAAt(origin+5, 5).A)
	}

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "walk_final_swatch.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.FramesDir, "walk", "frame_001.png"))
	require.NoError(t, err)
}

func TestProcess_AnalyzeWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeSheet(t, dir)

	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Mode = config.ModeAnalyze
	cfg.Cols, cfg.Rows = 2, 1
	require.NoError(t, cfg.Validate())

	var logs bytes.Buffer
	p := &processor{cfg: &cfg, log: slog.New(slog.NewTextHandler(&logs, nil))}
	require.NoError(t, p.process(context.Background(), input, ""))
	// Without background removal every 8px frame is fully opaque.
	require.Contains(t, logs.String(), "avg_size=7.0x7.0")
	require.Contains(t, logs.String(), "frames=2")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestProcess_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Input = filepath.Join(dir, "missing.png")
	require.Error(t, testProcessor(&cfg).process(context.Background(), cfg.Input, ""))

	input := writeSheet(t, dir)
	cfg.Mode = config.ModeAlign
	cfg.Cols, cfg.Rows = 3, 1
	require.Error(t, testProcessor(&cfg).process(context.Background(), input, ""), "16px wide sheet has no 3 column grid")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, testProcessor(&cfg).process(ctx, input, ""), context.Canceled)
}
