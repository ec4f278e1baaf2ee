package spritefix

import (
	"image"
	"image/color"
)

var (
	green = color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	red   = color.NRGBA{R: 220, G: 20, B: 20, A: 255}
	blue  = color.NRGBA{R: 20, G: 40, B: 230, A: 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func rgb(c color.NRGBA) Color {
	return Color{c.R, c.G, c.B}
}

func repeat(c Color, n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}
