package spritefix

import "fmt"

type Options struct {
	// Color distance at which a pixel is fully foreground.
	// Ideal start: 40-50 for flat generated backdrops.
	// Too low leaves a halo of background fringe; too high eats dark outlines.
	Tolerance float64
	// Pixels taken from each end of every border line. Clamped to the image size.
	SampleSize int
	// Maximum number of background candidates. 1 behaves like a single-color remover.
	TopN int
	// Also sample the 10x10 corner blocks.
	Corners bool
	Edges   EdgeMode
	Metric  Metric
	// Keep existing transparency where it is lower than the computed alpha.
	PreserveAlpha bool

	RemoveBackground bool
	// Clear bright, white, light purple and light grey pixels after background removal.
	LightBackground bool

	// Grid used for alignment and resizing. Zero disables both.
	Cols, Rows int
	Recenter   bool
	// Alpha a pixel must exceed to count as sprite content.
	AlphaThreshold uint8
	// Target frame size in pixels. Zero keeps the sheet size.
	FrameSize int
}

func DefaultOptions() Options {
	return Options{
		Tolerance:        45,
		SampleSize:       100,
		TopN:             5,
		Edges:            EdgeGradient,
		Metric:           MetricRGB,
		PreserveAlpha:    true,
		RemoveBackground: true,
		AlphaThreshold:   DefaultAlphaThreshold,
	}
}

// SingleColor restricts sampling to the dominant border color, including
// the corner blocks.
func (o Options) SingleColor() Options {
	o.TopN = 1
	o.Corners = true
	return o
}

// Validate rejects parameter combinations the stages cannot run with.
func (o Options) Validate() error {
	if o.RemoveBackground {
		if !(o.Tolerance > 0) {
			return fmt.Errorf("%w: got %v", ErrInvalidTolerance, o.Tolerance)
		}
		if o.SampleSize <= 0 {
			return fmt.Errorf("%w: sample size %d", ErrInvalidSize, o.SampleSize)
		}
	}
	if o.Cols < 0 || o.Rows < 0 || (o.Cols == 0) != (o.Rows == 0) {
		return fmt.Errorf("%w: %dx%d grid", ErrInvalidGrid, o.Cols, o.Rows)
	}
	if o.FrameSize < 0 {
		return fmt.Errorf("%w: frame size %d", ErrInvalidGrid, o.FrameSize)
	}
	if o.Cols == 0 && (o.Recenter || o.FrameSize > 0) {
		return fmt.Errorf("%w: recentering and resizing need a grid", ErrInvalidGrid)
	}
	return nil
}

func (o Options) hasGrid() bool {
	return o.Cols > 0 && o.Rows > 0
}
