package spritefix

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"
)

// DefaultAlphaThreshold is the alpha a pixel must exceed to count as
// sprite content.
const DefaultAlphaThreshold = 10

// JitterLimit is the center standard deviation, in pixels, above which
// frames are considered inconsistently aligned.
const JitterLimit = 2.0

// GridSpec partitions a sheet into Cols x Rows equal frames.
type GridSpec struct {
	Cols, Rows              int
	FrameWidth, FrameHeight int
}

// NewGridSpec derives the frame size of a sheet of the given size. The
// sheet must divide evenly into cols x rows frames.
func NewGridSpec(size image.Point, cols, rows int) (GridSpec, error) {
	if cols <= 0 || rows <= 0 {
		return GridSpec{}, fmt.Errorf("%w: %dx%d grid", ErrInvalidGrid, cols, rows)
	}
	if size.X < cols || size.Y < rows || size.X%cols != 0 || size.Y%rows != 0 {
		return GridSpec{}, fmt.Errorf("%w: %dx%d sheet does not divide into %dx%d frames",
			ErrInvalidGrid, size.X, size.Y, cols, rows)
	}
	return GridSpec{
		Cols:        cols,
		Rows:        rows,
		FrameWidth:  size.X / cols,
		FrameHeight: size.Y / rows,
	}, nil
}

// Size is the sheet size the grid covers.
func (g GridSpec) Size() image.Point {
	return image.Pt(g.Cols*g.FrameWidth, g.Rows*g.FrameHeight)
}

// Frame returns the cell at (row, col) in sheet coordinates relative to the
// sheet origin.
func (g GridSpec) Frame(row, col int) image.Rectangle {
	x, y := col*g.FrameWidth, row*g.FrameHeight
	return image.Rect(x, y, x+g.FrameWidth, y+g.FrameHeight)
}

func (g GridSpec) check(img *image.NRGBA) error {
	if img == nil {
		return ErrNilImage
	}
	if g.Cols <= 0 || g.Rows <= 0 || g.FrameWidth <= 0 || g.FrameHeight <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidGrid, g)
	}
	if img.Rect.Size() != g.Size() {
		return fmt.Errorf("%w: grid covers %v but image is %v", ErrInvalidGrid, g.Size(), img.Rect.Size())
	}
	return nil
}

// BoundingBox holds inclusive pixel coordinates.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY int
}

// Dx is the number of pixel columns covered by the box.
func (b BoundingBox) Dx() int { return b.MaxX - b.MinX + 1 }

// Dy is the number of pixel rows covered by the box.
func (b BoundingBox) Dy() int { return b.MaxY - b.MinY + 1 }

func (b BoundingBox) Center() (x, y float64) {
	return float64(b.MinX+b.MaxX) / 2, float64(b.MinY+b.MaxY) / 2
}

// FrameBounds finds the tightest box around pixels of frame whose alpha
// exceeds threshold. Coordinates are relative to the frame origin. ok is
// false when the frame has no such pixel.
func FrameBounds(img *image.NRGBA, frame image.Rectangle, threshold uint8) (box BoundingBox, ok bool) {
	if img == nil {
		return BoundingBox{}, false
	}
	frame = frame.Intersect(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	box = BoundingBox{MinX: frame.Dx(), MinY: frame.Dy(), MaxX: -1, MaxY: -1}
	for y := range frame.Dy() {
		for x := range frame.Dx() {
			if img.Pix[localOffset(img, frame.Min.X+x, frame.Min.Y+y)+3] <= threshold {
				continue
			}
			box.MinX = min(box.MinX, x)
			box.MaxX = max(box.MaxX, x)
			box.MinY = min(box.MinY, y)
			box.MaxY = max(box.MaxY, y)
		}
	}
	if box.MaxX < 0 {
		return BoundingBox{}, false
	}
	return box, true
}

// Bounds is FrameBounds over the whole buffer.
func Bounds(img *image.NRGBA, threshold uint8) (BoundingBox, bool) {
	if img == nil {
		return BoundingBox{}, false
	}
	return FrameBounds(img, image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()), threshold)
}

// FrameOffset describes the content of one grid cell.
type FrameOffset struct {
	Row, Col         int
	Box              BoundingBox
	CenterX, CenterY float64
	// Spans MaxX-MinX and MaxY-MinY.
	Width, Height int
}

// Analyze measures every cell of the grid in row-major order. Cells with
// no content are omitted.
func Analyze(img *image.NRGBA, grid GridSpec, threshold uint8) ([]FrameOffset, error) {
	if err := grid.check(img); err != nil {
		return nil, err
	}
	var offsets []FrameOffset
	for row := range grid.Rows {
		for col := range grid.Cols {
			box, ok := FrameBounds(img, grid.Frame(row, col), threshold)
			if !ok {
				continue
			}
			cx, cy := box.Center()
			offsets = append(offsets, FrameOffset{
				Row:     row,
				Col:     col,
				Box:     box,
				CenterX: cx,
				CenterY: cy,
				Width:   box.MaxX - box.MinX,
				Height:  box.MaxY - box.MinY,
			})
		}
	}
	return offsets, nil
}

// Jitter summarizes how frame centers spread within their cells.
type Jitter struct {
	Frames       int
	MeanX, MeanY float64
	// Population standard deviations of the centers.
	StdX, StdY float64
	// Average box span (MaxX-MinX, MaxY-MinY) over the measured frames.
	MeanWidth, MeanHeight float64
}

// High reports whether either axis deviates by more than JitterLimit.
func (j Jitter) High() bool {
	return j.StdX > JitterLimit || j.StdY > JitterLimit
}

// MeasureJitter computes mean and standard deviation of the frame centers
// on each axis independently, and the average sprite size.
func MeasureJitter(offsets []FrameOffset) Jitter {
	n := len(offsets)
	if n == 0 {
		return Jitter{}
	}
	xs, ys := make([]float64, n), make([]float64, n)
	ws, hs := make([]float64, n), make([]float64, n)
	for i, o := range offsets {
		xs[i], ys[i] = o.CenterX, o.CenterY
		ws[i], hs[i] = float64(o.Width), float64(o.Height)
	}
	j := Jitter{Frames: n}
	j.MeanX, j.StdX = stat.PopMeanStdDev(xs, nil)
	j.MeanY, j.StdY = stat.PopMeanStdDev(ys, nil)
	j.MeanWidth = stat.Mean(ws, nil)
	j.MeanHeight = stat.Mean(hs, nil)
	return j
}

// Recenter returns a new sheet where the content of every measured frame
// is moved so its box sits at ((fw-w)/2, (fh-h)/2) in its cell, using
// floor division on both axes. Everything else is zero.
func Recenter(img *image.NRGBA, grid GridSpec, offsets []FrameOffset) (*image.NRGBA, error) {
	if err := grid.check(img); err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for _, o := range offsets {
		if o.Row < 0 || o.Row >= grid.Rows || o.Col < 0 || o.Col >= grid.Cols {
			return nil, fmt.Errorf("%w: frame [%d,%d] outside %dx%d grid", ErrInvalidGrid, o.Row, o.Col, grid.Cols, grid.Rows)
		}
		cell := grid.Frame(o.Row, o.Col)
		w, h := o.Box.Dx(), o.Box.Dy()
		if o.Box.MinX < 0 || o.Box.MinY < 0 || o.Box.MaxX >= grid.FrameWidth || o.Box.MaxY >= grid.FrameHeight || w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: box %+v does not fit frame [%d,%d]", ErrInvalidGrid, o.Box, o.Row, o.Col)
		}
		dstX := cell.Min.X + (grid.FrameWidth-w)/2
		dstY := cell.Min.Y + (grid.FrameHeight-h)/2
		for y := range h {
			si := localOffset(img, cell.Min.X+o.Box.MinX, cell.Min.Y+o.Box.MinY+y)
			di := pixOffset(out.Stride, dstX, dstY+y)
			copy(out.Pix[di:di+w*4], img.Pix[si:si+w*4])
		}
	}
	return out, nil
}
