package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/spritefix"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CandidateMethod selects how background candidates are proposed from the
// border samples.
type CandidateMethod int

const (
	CandidateMethodBorder CandidateMethod = iota
	CandidateMethodDominantColor
	CandidateMethodKMeans
)

func (m CandidateMethod) String() string {
	switch m {
	case CandidateMethodDominantColor:
		return "dominantcolor"
	case CandidateMethodKMeans:
		return "kmeans"
	default:
		return "border"
	}
}

// ParseCandidateMethod maps a method name to a CandidateMethod.
func ParseCandidateMethod(s string) (CandidateMethod, error) {
	switch s {
	case "border", "":
		return CandidateMethodBorder, nil
	case "dominantcolor", "dominant":
		return CandidateMethodDominantColor, nil
	case "kmeans":
		return CandidateMethodKMeans, nil
	}
	return CandidateMethodBorder, fmt.Errorf("unknown candidate method %q", s)
}

type weightedColor struct {
	Col    spritefix.Color
	Weight float64
}

// ExtractCandidates proposes background candidates for img according to
// opt's sampling parameters.
func ExtractCandidates(img *image.NRGBA, opt spritefix.Options, method CandidateMethod) []spritefix.Candidate {
	samples := spritefix.BorderSamples(img, opt.SampleSize, opt.Corners)
	switch method {
	case CandidateMethodKMeans:
		c := ExtractKMeansCandidates(samples, opt.TopN)
		if len(c) != 0 {
			return c
		}
		log.Println("candidate warning: kmeans returned no candidates, falling back to dominantcolor")
		return ExtractDominantCandidates(samples, opt.TopN)
	case CandidateMethodDominantColor:
		return ExtractDominantCandidates(samples, opt.TopN)
	default:
		return spritefix.RankColors(samples, opt.TopN)
	}
}

// sampleTile lays samples out row by row in a near-square image.
// dominantcolor downscales wide images by aspect ratio, which would
// collapse a one pixel high strip to zero rows. Padding pixels stay fully
// transparent so they are not counted.
func sampleTile(samples []spritefix.Color) *image.NRGBA {
	side := int(math.Ceil(math.Sqrt(float64(len(samples)))))
	tile := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i, c := range samples {
		tile.SetNRGBA(i%side, i/side, c.NRGBA())
	}
	return tile
}

func ExtractDominantCandidates(samples []spritefix.Color, topN int) []spritefix.Candidate {
	if len(samples) == 0 {
		return nil
	}
	n := topN
	if n <= 0 {
		n = len(samples)
	}
	found := dominantcolor.FindWeight(sampleTile(samples), n)
	weighted := make([]weightedColor, 0, len(found))
	for _, c := range found {
		weighted = append(weighted, weightedColor{
			Col:    spritefix.Color{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B},
			Weight: c.Weight,
		})
	}
	return weightedCandidates(weighted, topN)
}

func ExtractKMeansCandidates(samples []spritefix.Color, topN int) []spritefix.Candidate {
	if len(samples) == 0 {
		return nil
	}

	distinct := make(map[spritefix.Color]struct{})
	dataset := make(clusters.Observations, 0, len(samples))
	for _, c := range samples {
		distinct[c] = struct{}{}
		dataset = append(dataset, clusters.Coordinates{
			float64(c.R) / 255.0,
			float64(c.G) / 255.0,
			float64(c.B) / 255.0,
		})
	}

	k := len(distinct)
	if topN > 0 {
		k = min(k, topN)
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{
			Col: spritefix.Color{
				R: uint8(math.Round(col.R * 255)),
				G: uint8(math.Round(col.G * 255)),
				B: uint8(math.Round(col.B * 255)),
			},
			Weight: float64(len(c.Observations)),
		})
	}
	return weightedCandidates(weighted, topN)
}

// weightedCandidates orders colors by descending weight, converts weights
// to percentages of their sum and applies the support filter.
func weightedCandidates(weighted []weightedColor, topN int) []spritefix.Candidate {
	total := 0.0
	for _, w := range weighted {
		total += max(w.Weight, 0)
	}
	if total <= 0 {
		return nil
	}
	slices.SortStableFunc(weighted, func(a, b weightedColor) int {
		if a.Weight > b.Weight {
			return -1
		}
		if a.Weight < b.Weight {
			return 1
		}
		return 0
	})
	out := make([]spritefix.Candidate, 0, len(weighted))
	for _, w := range weighted {
		out = append(out, spritefix.Candidate{
			Color:      w.Col,
			Confidence: max(w.Weight, 0) / total * 100,
		})
	}
	return spritefix.FilterCandidates(out, topN)
}

// ReadImage decodes png, jpeg, gif, webp, bmp or tiff files.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ReadBuffer decodes path into a straight-alpha buffer, promoting sources
// without alpha to fully opaque.
func ReadBuffer(path string) (*image.NRGBA, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return spritefix.ToNRGBA(img), nil
}

func SaveFrames(frames []*image.NRGBA, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i := range frames {
		name := filepath.Join(dir, fmt.Sprintf("frame_%03d.png", i))
		if err := SaveImage(frames[i], name); err != nil {
			return err
		}
	}
	return nil
}

// SaveImage encodes img as PNG, which keeps the alpha plane exactly.
func SaveImage(img image.Image, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return png.Encode(f, img)
}

// SaveSwatches writes the candidate colors as a strip of square tiles.
func SaveSwatches(cands []spritefix.Candidate, tileSize int, filename string) error {
	if len(cands) == 0 {
		return fmt.Errorf("no candidates")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(cands)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, c := range cands {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
	}

	return SaveImage(img, filename)
}

// OutputPath derives "<name><suffix>.png" for input, placed in outDir or,
// when outDir is empty, next to the input.
func OutputPath(input, outDir, suffix string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + suffix + ".png"
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return filepath.Join(outDir, name)
}

// FormatCandidates renders candidates as "#rrggbb 80.0%" pairs for logs.
func FormatCandidates(cands []spritefix.Candidate) string {
	parts := make([]string, len(cands))
	for i, c := range cands {
		parts[i] = c.Hex() + " " + strconv.FormatFloat(c.Confidence, 'f', 1, 64) + "%"
	}
	return strings.Join(parts, ", ")
}
