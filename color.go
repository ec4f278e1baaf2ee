package spritefix

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an exact 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Colorful converts c to a go-colorful color with channels in [0,1].
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// NRGBA returns c as an opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Distance is the Euclidean distance between c and o in RGB space.
func (c Color) Distance(o Color) float64 {
	dr := float64(c.R) - float64(o.R)
	dg := float64(c.G) - float64(o.G)
	db := float64(c.B) - float64(o.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// DistanceLab is the CIE76 delta E between c and o with L* scaled to 0..100.
func (c Color) DistanceLab(o Color) float64 {
	return c.Colorful().DistanceLab(o.Colorful()) * 100
}

// Metric selects the color distance used to compare pixels with background
// candidates.
type Metric int

const (
	MetricRGB Metric = iota
	MetricLab
)

func (m Metric) String() string {
	switch m {
	case MetricLab:
		return "lab"
	default:
		return "rgb"
	}
}

// ParseMetric maps "rgb" or "lab" to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "rgb", "":
		return MetricRGB, nil
	case "lab":
		return MetricLab, nil
	}
	return MetricRGB, fmt.Errorf("unknown metric %q", s)
}

func (m Metric) distance(a, b Color) float64 {
	if m == MetricLab {
		return a.DistanceLab(b)
	}
	return a.Distance(b)
}

func pixOffset(stride, x, y int) int {
	return y*stride + x*4
}

// ToNRGBA returns img as a straight-alpha buffer with its origin at (0,0).
// The result never aliases img. Sources without an alpha channel come out
// fully opaque.
func ToNRGBA(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if src, ok := img.(*image.NRGBA); ok {
		for y := range h {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w*4], src.Pix[si:si+w*4])
		}
		return out
	}
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := pixOffset(out.Stride, x, y)
			out.Pix[off] = c.R
			out.Pix[off+1] = c.G
			out.Pix[off+2] = c.B
			out.Pix[off+3] = c.A
		}
	}
	return out
}

// colorAt reads the RGB triple at (x,y) relative to the buffer origin.
func colorAt(img *image.NRGBA, x, y int) Color {
	off := localOffset(img, x, y)
	return Color{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}
}

func localOffset(img *image.NRGBA, x, y int) int {
	return img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
}
