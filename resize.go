package spritefix

import (
	"fmt"
	"image"
)

// ResizeNearest scales img to w x h by nearest-neighbor sampling. Each
// destination pixel takes the source pixel under its center, so channel
// values (alpha included) are copied, never blended.
func ResizeNearest(img *image.NRGBA, w, h int) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	sw, sh := img.Rect.Dx(), img.Rect.Dy()
	if sw == 0 || sh == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidSize)
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	srcX := make([]int, w)
	for x := range w {
		srcX[x] = min(((2*x+1)*sw)/(2*w), sw-1)
	}
	for y := range h {
		sy := min(((2*y+1)*sh)/(2*h), sh-1)
		row := y * out.Stride
		for x := range w {
			si := localOffset(img, srcX[x], sy)
			copy(out.Pix[row+x*4:row+x*4+4], img.Pix[si:si+4])
		}
	}
	return out, nil
}

// GridCheck is the frame size measured on a resized sheet.
type GridCheck struct {
	FrameWidth, FrameHeight float64
	Want                    int
	OK                      bool
}

func (c GridCheck) String() string {
	return fmt.Sprintf("%gx%g (want %dx%d)", c.FrameWidth, c.FrameHeight, c.Want, c.Want)
}

// VerifyGrid divides size by the grid counts and compares with frame.
func VerifyGrid(size image.Point, cols, rows, frame int) GridCheck {
	c := GridCheck{Want: frame}
	if cols <= 0 || rows <= 0 {
		return c
	}
	c.FrameWidth = float64(size.X) / float64(cols)
	c.FrameHeight = float64(size.Y) / float64(rows)
	c.OK = size.X%cols == 0 && size.Y%rows == 0 && size.X/cols == frame && size.Y/rows == frame
	return c
}

// ResizeToGrid scales img to exactly cols*frame x rows*frame and reports
// the measured frame size. A failed check is informational.
func ResizeToGrid(img *image.NRGBA, cols, rows, frame int) (*image.NRGBA, GridCheck, error) {
	if cols <= 0 || rows <= 0 || frame <= 0 {
		return nil, GridCheck{}, fmt.Errorf("%w: %dx%d grid of %dpx frames", ErrInvalidGrid, cols, rows, frame)
	}
	out, err := ResizeNearest(img, cols*frame, rows*frame)
	if err != nil {
		return nil, GridCheck{}, err
	}
	return out, VerifyGrid(out.Rect.Size(), cols, rows, frame), nil
}
