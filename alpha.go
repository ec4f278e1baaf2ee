package spritefix

import (
	"fmt"
	"image"
)

// EdgeMode selects how color distance maps to alpha.
type EdgeMode int

const (
	// EdgeGradient ramps alpha linearly from 0 at the background color to
	// 255 at the tolerance distance, keeping anti-aliased edges.
	EdgeGradient EdgeMode = iota
	// EdgeBinary cuts pixels within tolerance to 0 and keeps the rest at 255.
	EdgeBinary
)

func (m EdgeMode) String() string {
	switch m {
	case EdgeBinary:
		return "binary"
	default:
		return "gradient"
	}
}

// ParseEdgeMode maps "gradient" or "binary" to an EdgeMode.
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch s {
	case "gradient", "":
		return EdgeGradient, nil
	case "binary", "hard":
		return EdgeBinary, nil
	}
	return EdgeGradient, fmt.Errorf("unknown edge mode %q", s)
}

// Synthesizer computes alpha planes from background candidates.
type Synthesizer struct {
	// Distance at which a pixel is fully foreground. Must be > 0.
	Tolerance float64
	Mode      EdgeMode
	Metric    Metric
}

// SynthesizeAlpha classifies every pixel of img against cands using the
// Euclidean RGB distance.
func SynthesizeAlpha(img *image.NRGBA, cands []Color, tolerance float64, mode EdgeMode) (*image.Alpha, error) {
	return Synthesizer{Tolerance: tolerance, Mode: mode}.Alpha(img, cands)
}

// Alpha returns a plane the size of img where each value is the minimum,
// over all candidates, of the alpha that candidate's distance maps to.
// Without candidates every pixel is 255.
func (s Synthesizer) Alpha(img *image.NRGBA, cands []Color) (*image.Alpha, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if !(s.Tolerance > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTolerance, s.Tolerance)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	plane := image.NewAlpha(image.Rect(0, 0, w, h))

	// Sheets repeat a small set of colors, so results are memoized per color.
	memo := make(map[Color]uint8)
	for y := range h {
		row := y * plane.Stride
		for x := range w {
			c := colorAt(img, x, y)
			a, ok := memo[c]
			if !ok {
				a = 255
				for _, bg := range cands {
					a = min(a, s.alphaFor(s.Metric.distance(c, bg)))
				}
				memo[c] = a
			}
			plane.Pix[row+x] = a
		}
	}
	return plane, nil
}

func (s Synthesizer) alphaFor(d float64) uint8 {
	if s.Mode == EdgeBinary {
		if d <= s.Tolerance {
			return 0
		}
		return 255
	}
	v := 255 * d / s.Tolerance
	if v >= 255 {
		return 255
	}
	return uint8(max(0, v))
}

// ApplyAlpha writes plane into the alpha channel of img in place. With
// preserve set the existing alpha is kept where it is lower, so the stage
// can only add transparency.
func ApplyAlpha(img *image.NRGBA, plane *image.Alpha, preserve bool) error {
	if img == nil || plane == nil {
		return ErrNilImage
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if plane.Rect.Dx() != w || plane.Rect.Dy() != h {
		return fmt.Errorf("%w: alpha plane %v does not match image %v", ErrInvalidSize, plane.Rect.Size(), img.Rect.Size())
	}
	for y := range h {
		for x := range w {
			off := localOffset(img, x, y) + 3
			a := plane.Pix[plane.PixOffset(plane.Rect.Min.X+x, plane.Rect.Min.Y+y)]
			if preserve {
				a = min(a, img.Pix[off])
			}
			img.Pix[off] = a
		}
	}
	return nil
}

// AlphaStats counts fully transparent, partially transparent and opaque
// pixels of an alpha plane.
type AlphaStats struct {
	Transparent int
	Semi        int
	Opaque      int
	Total       int
}

// Percent returns n as a percentage of the total pixel count.
func (s AlphaStats) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

func CountAlpha(plane *image.Alpha) AlphaStats {
	var st AlphaStats
	if plane == nil {
		return st
	}
	w, h := plane.Rect.Dx(), plane.Rect.Dy()
	for y := range h {
		for x := range w {
			switch a := plane.Pix[plane.PixOffset(plane.Rect.Min.X+x, plane.Rect.Min.Y+y)]; a {
			case 0:
				st.Transparent++
			case 255:
				st.Opaque++
			default:
				st.Semi++
			}
		}
	}
	st.Total = w * h
	return st
}

// RemoveLightBackground clears the alpha of pixels that look like a light
// backdrop: bright (mean > 200), white (all channels > 240), light purple
// (R and B > 200, G < 200) or light grey (channels within 20 of each other,
// mean > 180). It returns the number of pixels it matched.
func RemoveLightBackground(img *image.NRGBA) int {
	if img == nil {
		return 0
	}
	removed := 0
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := range h {
		for x := range w {
			off := localOffset(img, x, y)
			if isLightBackground(Color{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}) {
				img.Pix[off+3] = 0
				removed++
			}
		}
	}
	return removed
}

func isLightBackground(c Color) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	brightness := float64(r+g+b) / 3
	switch {
	case brightness > 200:
		return true
	case r > 240 && g > 240 && b > 240:
		return true
	case r > 200 && b > 200 && g < 200:
		return true
	case absInt(r-g) < 20 && absInt(g-b) < 20 && brightness > 180:
		return true
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
