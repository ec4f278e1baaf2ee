package spritefix

import (
	"image"
	"slices"
)

// MinSupport is the confidence (percent of border samples) a candidate
// must exceed to be kept.
const MinSupport = 1.0

// CornerBlock is the side length of the corner blocks sampled when corners
// are enabled.
const CornerBlock = 10

// Candidate is a color hypothesized to be the sheet background.
type Candidate struct {
	Color
	// Number of border samples with exactly this color. Zero for candidates
	// produced by weighting methods.
	Count int
	// Share of the sample set in percent.
	Confidence float64
}

// SampleBackground proposes background colors from the border of img,
// ordered by descending confidence. Candidates at or below MinSupport are
// dropped and at most topN are returned (topN <= 0 means no cap).
func SampleBackground(img *image.NRGBA, sampleSize, topN int, corners bool) []Candidate {
	return RankColors(BorderSamples(img, sampleSize, corners), topN)
}

// BorderSamples collects the first and last sampleSize pixels of the top
// and bottom rows and of the left and right columns, followed by the four
// CornerBlock x CornerBlock corner blocks when corners is set. sampleSize
// is clamped to min(sampleSize, width, height). Overlapping segments are
// sampled once per segment.
func BorderSamples(img *image.NRGBA, sampleSize int, corners bool) []Color {
	if img == nil {
		return nil
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	s := min(sampleSize, w, h)
	if s <= 0 {
		return nil
	}

	samples := make([]Color, 0, 8*s+4*CornerBlock*CornerBlock)
	row := func(y int) {
		for x := range s {
			samples = append(samples, colorAt(img, x, y))
		}
		for x := w - s; x < w; x++ {
			samples = append(samples, colorAt(img, x, y))
		}
	}
	col := func(x int) {
		for y := range s {
			samples = append(samples, colorAt(img, x, y))
		}
		for y := h - s; y < h; y++ {
			samples = append(samples, colorAt(img, x, y))
		}
	}
	row(0)
	row(h - 1)
	col(0)
	col(w - 1)

	if corners {
		bw, bh := min(CornerBlock, w), min(CornerBlock, h)
		for _, origin := range []image.Point{{0, 0}, {w - bw, 0}, {0, h - bh}, {w - bw, h - bh}} {
			for y := origin.Y; y < origin.Y+bh; y++ {
				for x := origin.X; x < origin.X+bw; x++ {
					samples = append(samples, colorAt(img, x, y))
				}
			}
		}
	}
	return samples
}

// RankColors builds a frequency table over samples and returns the topN
// most frequent colors above MinSupport. Equal counts keep first-seen order.
func RankColors(samples []Color, topN int) []Candidate {
	if len(samples) == 0 {
		return nil
	}
	index := make(map[Color]int)
	var ranked []Candidate
	for _, c := range samples {
		i, ok := index[c]
		if !ok {
			i = len(ranked)
			index[c] = i
			ranked = append(ranked, Candidate{Color: c})
		}
		ranked[i].Count++
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return b.Count - a.Count
	})

	total := float64(len(samples))
	for i := range ranked {
		ranked[i].Confidence = float64(ranked[i].Count) / total * 100
	}
	return FilterCandidates(ranked, topN)
}

// FilterCandidates caps an already ordered list at topN entries and drops
// those at or below MinSupport.
func FilterCandidates(cands []Candidate, topN int) []Candidate {
	if topN > 0 && len(cands) > topN {
		cands = cands[:topN]
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Confidence > MinSupport {
			out = append(out, c)
		}
	}
	return out
}

// Colors returns the colors of cands in order.
func Colors(cands []Candidate) []Color {
	out := make([]Color, len(cands))
	for i, c := range cands {
		out[i] = c.Color
	}
	return out
}
