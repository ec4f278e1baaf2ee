package utils

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/spritefix"
	"github.com/stretchr/testify/require"
)

var (
	backdrop = color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	accent   = color.NRGBA{R: 200, G: 30, B: 160, A: 255}
)

// borderSheet is a 20x20 image whose border samples are 80% backdrop and
// 20% accent with a sample size of 20. Every border line is sampled twice,
// so the 16 accent pixels of the top and bottom rows give 32 of 160 samples.
func borderSheet() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := range 20 {
		for x := range 20 {
			img.SetNRGBA(x, y, backdrop)
		}
	}
	for x := 2; x < 10; x++ {
		img.SetNRGBA(x, 0, accent)
		img.SetNRGBA(x, 19, accent)
	}
	return img
}

func TestExtractCandidates_Border(t *testing.T) {
	opt := spritefix.DefaultOptions()
	opt.SampleSize = 20
	cands := ExtractCandidates(borderSheet(), opt, CandidateMethodBorder)
	require.Len(t, cands, 2)
	require.Equal(t, spritefix.Color{R: 0, G: 200, B: 0}, cands[0].Color)
	require.InDelta(t, 80.0, cands[0].Confidence, 1e-9)
	require.InDelta(t, 20.0, cands[1].Confidence, 1e-9)
}

func TestExtractCandidates_KMeans(t *testing.T) {
	opt := spritefix.DefaultOptions()
	opt.SampleSize = 20
	cands := ExtractCandidates(borderSheet(), opt, CandidateMethodKMeans)
	require.Len(t, cands, 2)
	require.Equal(t, spritefix.Color{R: 0, G: 200, B: 0}, cands[0].Color)
	require.Equal(t, spritefix.Color{R: 200, G: 30, B: 160}, cands[1].Color)
	require.InDelta(t, 80.0, cands[0].Confidence, 1e-9)
}

func TestExtractCandidates_DominantColor(t *testing.T) {
	opt := spritefix.DefaultOptions()
	opt.SampleSize = 20
	cands := ExtractCandidates(borderSheet(), opt, CandidateMethodDominantColor)
	require.NotEmpty(t, cands)
	require.LessOrEqual(t, len(cands), opt.TopN)
	for i := 1; i < len(cands); i++ {
		require.GreaterOrEqual(t, cands[i-1].Confidence, cands[i].Confidence)
	}
	for _, c := range cands {
		require.Greater(t, c.Confidence, spritefix.MinSupport)
	}
}

func TestExtractCandidates_DefaultSampleSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	for y := range 200 {
		for x := range 300 {
			img.SetNRGBA(x, y, backdrop)
		}
	}
	for x := 20; x < 60; x++ {
		img.SetNRGBA(x, 0, accent)
	}
	opt := spritefix.DefaultOptions()
	require.Len(t, spritefix.BorderSamples(img, opt.SampleSize, opt.Corners), 800)

	for _, m := range []CandidateMethod{CandidateMethodBorder, CandidateMethodDominantColor, CandidateMethodKMeans} {
		t.Run(m.String(), func(t *testing.T) {
			var cands []spritefix.Candidate
			require.NotPanics(t, func() { cands = ExtractCandidates(img, opt, m) })
			require.NotEmpty(t, cands)
			require.Greater(t, cands[0].Confidence, 50.0)
		})
	}
}

func TestSampleTile(t *testing.T) {
	samples := repeatColor(spritefix.Color{R: 0, G: 200, B: 0}, 800)
	tile := sampleTile(samples)
	require.Equal(t, image.Pt(29, 29), tile.Rect.Size())
	require.Equal(t, backdrop, tile.NRGBAAt(0, 0))
	require.Equal(t, backdrop, tile.NRGBAAt(16, 27), "last sample")
	require.Zero(t, tile.NRGBAAt(17, 27).A, "padding is transparent")
	require.Zero(t, tile.NRGBAAt(28, 28).A)
}

func repeatColor(c spritefix.Color, n int) []spritefix.Color {
	out := make([]spritefix.Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestExtractCandidates_Empty(t *testing.T) {
	require.Nil(t, ExtractKMeansCandidates(nil, 3))
	require.Nil(t, ExtractDominantCandidates(nil, 3))
}

func TestParseCandidateMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    CandidateMethod
		wantErr bool
	}{
		{"", CandidateMethodBorder, false},
		{"border", CandidateMethodBorder, false},
		{"dominant", CandidateMethodDominantColor, false},
		{"dominantcolor", CandidateMethodDominantColor, false},
		{"kmeans", CandidateMethodKMeans, false},
		{"slic", CandidateMethodBorder, true},
	}
	for _, tt := range tests {
		got, err := ParseCandidateMethod(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
		if tt.in != "" && tt.in != "dominant" {
			require.Equal(t, tt.in, got.String())
		}
	}
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("art", "hero_transparent.png"), OutputPath(filepath.Join("art", "hero.jpg"), "", "_transparent"))
	require.Equal(t, filepath.Join("out", "hero_final.png"), OutputPath(filepath.Join("art", "hero.png"), "out", "_final"))
	require.Equal(t, filepath.Join("art", "walk.cycle_fixed_grid.png"), OutputPath(filepath.Join("art", "walk.cycle.webp"), "", "_fixed_grid"))
}

func TestSaveImage_RoundTripKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 63})
	img.SetNRGBA(2, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	path := filepath.Join(t.TempDir(), "sheet.png")
	require.NoError(t, SaveImage(img, path))

	got, err := ReadBuffer(path)
	require.NoError(t, err)
	require.Equal(t, img.Rect, got.Rect)
	for y := range 2 {
		for x := range 3 {
			want := img.NRGBAAt(x, y)
			if want.A == 0 {
				require.Zero(t, got.NRGBAAt(x, y).A)
				continue
			}
			require.Equal(t, want, got.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestReadImage_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadImage(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = ReadImage(bad)
	require.Error(t, err)
}

func TestSaveSwatches(t *testing.T) {
	cands := []spritefix.Candidate{
		{Color: spritefix.Color{R: 0, G: 200, B: 0}, Confidence: 80},
		{Color: spritefix.Color{R: 200, G: 30, B: 160}, Confidence: 20},
	}
	path := filepath.Join(t.TempDir(), "swatch.png")
	require.NoError(t, SaveSwatches(cands, 8, path))

	got, err := ReadBuffer(path)
	require.NoError(t, err)
	require.Equal(t, image.Pt(16, 8), got.Rect.Size())
	require.Equal(t, backdrop, got.NRGBAAt(3, 3))
	require.Equal(t, accent, got.NRGBAAt(12, 7))

	require.Error(t, SaveSwatches(nil, 8, path))
}

func TestSaveFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	frames := []*image.NRGBA{
		image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		image.NewNRGBA(image.Rect(0, 0, 4, 4)),
	}
	require.NoError(t, SaveFrames(frames, dir))
	for _, name := range []string{"frame_000.png", "frame_001.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
	}
}

func TestFormatCandidates(t *testing.T) {
	cands := []spritefix.Candidate{{Color: spritefix.Color{R: 255, G: 0, B: 16}, Confidence: 87.5}}
	require.Equal(t, "#ff0010 87.5%", FormatCandidates(cands))
}
