package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/setanarut/spritefix"
	"github.com/setanarut/spritefix/internal/config"
	"github.com/setanarut/spritefix/utils"
)

type processor struct {
	cfg *config.Config
	log *slog.Logger
}

// process runs the configured stages on one file and writes the result.
// output overrides the derived output path when non-empty.
func (p *processor) process(ctx context.Context, path, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := utils.ReadBuffer(path)
	if err != nil {
		return err
	}
	size := buf.Rect.Size()
	p.log.Info("loaded", "size", fmt.Sprintf("%dx%d", size.X, size.Y), "mode", p.cfg.Mode)

	opt := p.cfg.Options()
	var cands []spritefix.Candidate
	if opt.RemoveBackground {
		cands = utils.ExtractCandidates(buf, opt, p.cfg.CandidateMethod())
		p.log.Info("background candidates", "method", p.cfg.Method, "colors", utils.FormatCandidates(cands))
	}

	sheet := spritefix.NewSpriteSheet(buf, cands)
	if err := sheet.Build(opt); err != nil {
		return err
	}
	p.report(sheet, opt)

	if !p.cfg.Mode.Writes() {
		return nil
	}
	if output == "" {
		output = utils.OutputPath(path, p.cfg.OutputDir, p.cfg.Mode.Suffix())
	}
	if err := utils.SaveImage(sheet.Buffer, output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}
	out := sheet.Buffer.Rect.Size()
	p.log.Info("saved", "path", output, "size", fmt.Sprintf("%dx%d", out.X, out.Y))

	if p.cfg.Swatch && len(sheet.Candidates) > 0 {
		swatch := strings.TrimSuffix(output, filepath.Ext(output)) + "_swatch.png"
		if err := utils.SaveSwatches(sheet.Candidates, 64, swatch); err != nil {
			return fmt.Errorf("save swatch: %w", err)
		}
	}
	if p.cfg.FramesDir != "" {
		if frames := sheet.Frames(); frames != nil {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err := utils.SaveFrames(frames, filepath.Join(p.cfg.FramesDir, stem)); err != nil {
				return fmt.Errorf("save frames: %w", err)
			}
		}
	}
	return nil
}

func (p *processor) report(sheet *spritefix.SpriteSheet, opt spritefix.Options) {
	if opt.RemoveBackground {
		st := sheet.AlphaStats
		p.log.Info("alpha",
			"transparent", fmt.Sprintf("%d (%.1f%%)", st.Transparent, st.Percent(st.Transparent)),
			"semi", fmt.Sprintf("%d (%.1f%%)", st.Semi, st.Percent(st.Semi)),
			"opaque", fmt.Sprintf("%d (%.1f%%)", st.Opaque, st.Percent(st.Opaque)))
	}
	if opt.LightBackground {
		p.log.Info("light background removed", "pixels", sheet.LightRemoved)
	}
	if opt.FrameSize > 0 {
		if sheet.GridCheck.OK {
			p.log.Info("grid verified", "frame", sheet.GridCheck.String())
		} else {
			p.log.Warn("grid dimensions may have rounding errors", "frame", sheet.GridCheck.String())
		}
	}
	if opt.Cols == 0 {
		return
	}
	for _, o := range sheet.Offsets {
		p.log.Debug("frame",
			"cell", fmt.Sprintf("[%d,%d]", o.Row, o.Col),
			"center", fmt.Sprintf("(%.1f, %.1f)", o.CenterX, o.CenterY),
			"size", fmt.Sprintf("%dx%d", o.Width, o.Height))
	}
	j := sheet.Jitter
	attrs := []any{
		"frames", j.Frames,
		"avg_center", fmt.Sprintf("(%.1f, %.1f)", j.MeanX, j.MeanY),
		"avg_size", fmt.Sprintf("%.1fx%.1f", j.MeanWidth, j.MeanHeight),
		"std", fmt.Sprintf("X=%.1fpx Y=%.1fpx", j.StdX, j.StdY),
	}
	switch {
	case j.Frames < 2:
		p.log.Info("jitter not measured", "frames", j.Frames)
	case j.High():
		p.log.Warn("high jitter, sprites not centered consistently", attrs...)
	default:
		p.log.Info("low jitter, sprites well aligned", attrs...)
	}
	if opt.Recenter {
		p.log.Info("re-centered", "frames", len(sheet.Offsets))
	}
}
