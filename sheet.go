package spritefix

import (
	"fmt"
	"image"
	"image/color"
)

// SpriteSheet runs the processing stages over one image and keeps each
// stage's product for inspection.
type SpriteSheet struct {
	InputImage   image.Image
	Buffer       *image.NRGBA
	// Candidates used by the last background removal: the ones given to
	// NewSpriteSheet, or freshly sampled when none were given.
	Candidates   []Candidate
	Alpha        *image.Alpha
	AlphaStats   AlphaStats
	LightRemoved int
	Grid         GridSpec
	GridCheck    GridCheck
	Offsets      []FrameOffset
	Jitter       Jitter

	given []Candidate
}

// NewSpriteSheet wraps input. Candidates may be nil, in which case every
// Build samples them from the image border with that call's options.
func NewSpriteSheet(input image.Image, candidates []Candidate) *SpriteSheet {
	return &SpriteSheet{
		InputImage: input,
		Candidates: candidates,
		given:      candidates,
	}
}

// Build runs background removal, the light-background pass, grid resizing
// and frame alignment, each as enabled by opt. Resizing runs before
// alignment so frames are centered at their final resolution.
func (s *SpriteSheet) Build(opt Options) error {
	if s.InputImage == nil {
		return ErrNilImage
	}
	if err := opt.Validate(); err != nil {
		return err
	}
	s.Buffer = ToNRGBA(s.InputImage)

	if opt.RemoveBackground {
		if err := s.RemoveBackground(opt); err != nil {
			return fmt.Errorf("remove background: %w", err)
		}
	}
	if opt.LightBackground {
		s.LightRemoved = RemoveLightBackground(s.Buffer)
	}
	if !opt.hasGrid() {
		return nil
	}
	if opt.FrameSize > 0 {
		if err := s.Resize(opt.Cols, opt.Rows, opt.FrameSize); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}
	if err := s.Align(opt.Cols, opt.Rows, opt.AlphaThreshold, opt.Recenter); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	return nil
}

// RemoveBackground samples candidates when none were given, synthesizes
// the alpha plane and merges it into the buffer.
func (s *SpriteSheet) RemoveBackground(opt Options) error {
	if err := s.ensureBuffer(); err != nil {
		return err
	}
	s.Candidates = s.given
	if s.Candidates == nil {
		s.Candidates = SampleBackground(s.Buffer, opt.SampleSize, opt.TopN, opt.Corners)
	}
	syn := Synthesizer{Tolerance: opt.Tolerance, Mode: opt.Edges, Metric: opt.Metric}
	plane, err := syn.Alpha(s.Buffer, Colors(s.Candidates))
	if err != nil {
		return err
	}
	if err := ApplyAlpha(s.Buffer, plane, opt.PreserveAlpha); err != nil {
		return err
	}
	s.Alpha = plane
	s.AlphaStats = CountAlpha(plane)
	return nil
}

// Resize scales the buffer to a cols*frame x rows*frame sheet.
func (s *SpriteSheet) Resize(cols, rows, frame int) error {
	if err := s.ensureBuffer(); err != nil {
		return err
	}
	out, check, err := ResizeToGrid(s.Buffer, cols, rows, frame)
	if err != nil {
		return err
	}
	s.Buffer = out
	s.GridCheck = check
	return nil
}

// Align measures every frame and, with recenter set, moves each sprite to
// the center of its cell.
func (s *SpriteSheet) Align(cols, rows int, threshold uint8, recenter bool) error {
	if err := s.ensureBuffer(); err != nil {
		return err
	}
	grid, err := NewGridSpec(s.Buffer.Rect.Size(), cols, rows)
	if err != nil {
		return err
	}
	offsets, err := Analyze(s.Buffer, grid, threshold)
	if err != nil {
		return err
	}
	s.Grid = grid
	s.Offsets = offsets
	s.Jitter = MeasureJitter(offsets)
	if !recenter {
		return nil
	}
	out, err := Recenter(s.Buffer, grid, offsets)
	if err != nil {
		return err
	}
	s.Buffer = out
	return nil
}

func (s *SpriteSheet) ensureBuffer() error {
	if s.Buffer != nil {
		return nil
	}
	if s.InputImage == nil {
		return ErrNilImage
	}
	s.Buffer = ToNRGBA(s.InputImage)
	return nil
}

// Frames cuts the buffer into one image per grid cell in row-major order.
// It returns nil before Align has run.
func (s *SpriteSheet) Frames() []*image.NRGBA {
	g := s.Grid
	if s.Buffer == nil || g.Cols == 0 || g.Rows == 0 || s.Buffer.Rect.Size() != g.Size() {
		return nil
	}
	out := make([]*image.NRGBA, 0, g.Cols*g.Rows)
	for row := range g.Rows {
		for col := range g.Cols {
			cell := g.Frame(row, col)
			frame := image.NewNRGBA(image.Rect(0, 0, g.FrameWidth, g.FrameHeight))
			for y := range g.FrameHeight {
				si := localOffset(s.Buffer, cell.Min.X, cell.Min.Y+y)
				copy(frame.Pix[y*frame.Stride:y*frame.Stride+g.FrameWidth*4], s.Buffer.Pix[si:si+g.FrameWidth*4])
			}
			out = append(out, frame)
		}
	}
	return out
}

// Mask returns the alpha channel of the buffer as a grayscale image.
func (s *SpriteSheet) Mask() *image.Gray {
	if s.Buffer == nil {
		return nil
	}
	w, h := s.Buffer.Rect.Dx(), s.Buffer.Rect.Dy()
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			mask.SetGray(x, y, color.Gray{Y: s.Buffer.Pix[localOffset(s.Buffer, x, y)+3]})
		}
	}
	return mask
}
