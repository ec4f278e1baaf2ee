// Package config holds runtime configuration: defaults, an optional YAML
// file, CLI flag parsing and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/setanarut/spritefix"
	"github.com/setanarut/spritefix/utils"
	"gopkg.in/yaml.v3"
)

// Mode selects which stages run.
type Mode string

const (
	ModeTransparent Mode = "transparent" // Background removal only.
	ModeAlign       Mode = "align"       // Light-background pass and re-centering.
	ModeAnalyze     Mode = "analyze"     // Report frame boxes and jitter, write nothing.
	ModeGrid        Mode = "grid"        // Nearest-neighbor resize to the exact grid.
	ModePipeline    Mode = "pipeline"    // Background removal, resize, re-centering (default).
)

// Suffix is appended to the input name to derive the output path.
func (m Mode) Suffix() string {
	switch m {
	case ModeTransparent:
		return "_transparent"
	case ModeAlign:
		return "_fixed_aligned"
	case ModeGrid:
		return "_fixed_grid"
	case ModePipeline:
		return "_final"
	}
	return ""
}

// Writes reports whether the mode produces an output image.
func (m Mode) Writes() bool {
	return m != ModeAnalyze
}

func (m Mode) needsGrid() bool {
	return m != ModeTransparent
}

func (m Mode) needsFrameSize() bool {
	return m == ModeGrid || m == ModePipeline
}

// Config holds all runtime settings. Keys absent from a YAML file keep
// their defaults, keys present overwrite them even when zero; flags
// override both.
type Config struct {
	// Paths. Input is the positional argument: a file or a directory.
	Input     string `yaml:"-"`
	Output    string `yaml:"output"`     // Single-file output path; derived when empty.
	OutputDir string `yaml:"output_dir"` // Directory for derived outputs.
	FramesDir string `yaml:"frames_dir"` // Also write each frame as its own PNG.
	Swatch    bool   `yaml:"swatch"`     // Write detected background colors next to the output.

	Mode Mode `yaml:"mode"`

	// Background removal.
	Tolerance   float64 `yaml:"tolerance"`    // Default: 45.
	SampleSize  int     `yaml:"sample_size"`  // Default: 100.
	TopN        int     `yaml:"top_n"`        // Default: 5.
	SingleColor bool    `yaml:"single_color"` // Only the dominant border color, corners included.
	HardEdges   bool    `yaml:"hard_edges"`   // Binary alpha instead of a gradient.
	Method      string  `yaml:"method"`       // border, dominantcolor or kmeans.
	Metric      string  `yaml:"metric"`       // rgb or lab.
	Aggressive  bool    `yaml:"aggressive"`   // Light-background pass in align mode. Default: true.

	// Grid.
	Cols           int `yaml:"cols"`            // Default: 6.
	Rows           int `yaml:"rows"`            // Default: 4.
	FrameSize      int `yaml:"frame_size"`      // Default: 128.
	AlphaThreshold int `yaml:"alpha_threshold"` // Default: 10.

	// Runtime.
	Parallel   int    `yaml:"parallel"`  // Files processed concurrently in batch mode. Default: 4.
	LogLevel   string `yaml:"log_level"` // debug, info, warn, error.
	LogFile    string `yaml:"log_file"`
	ConfigFile string `yaml:"-"`
}

func DefaultConfig() Config {
	opt := spritefix.DefaultOptions()
	return Config{
		Mode:           ModePipeline,
		Tolerance:      opt.Tolerance,
		SampleSize:     opt.SampleSize,
		TopN:           opt.TopN,
		Method:         utils.CandidateMethodBorder.String(),
		Metric:         spritefix.MetricRGB.String(),
		Aggressive:     true,
		Cols:           6,
		Rows:           4,
		FrameSize:      128,
		AlphaThreshold: spritefix.DefaultAlphaThreshold,
		Parallel:       4,
		LogLevel:       "info",
	}
}

// Load merges the YAML file at path into cfg.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeTransparent, ModeAlign, ModeAnalyze, ModeGrid, ModePipeline:
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q (want transparent, align, analyze, grid or pipeline)", c.Mode))
	}
	if c.Input == "" {
		errs = append(errs, errors.New("missing input path"))
	}
	if !(c.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("tolerance must be > 0, got %v", c.Tolerance))
	}
	if c.SampleSize <= 0 {
		errs = append(errs, fmt.Errorf("sample size must be > 0, got %d", c.SampleSize))
	}
	if c.TopN < 0 {
		errs = append(errs, fmt.Errorf("top-n must be >= 0, got %d", c.TopN))
	}
	if _, err := utils.ParseCandidateMethod(c.Method); err != nil {
		errs = append(errs, err)
	}
	if _, err := spritefix.ParseMetric(c.Metric); err != nil {
		errs = append(errs, err)
	}
	if c.Mode.needsGrid() && (c.Cols <= 0 || c.Rows <= 0) {
		errs = append(errs, fmt.Errorf("cols and rows must be > 0, got %dx%d", c.Cols, c.Rows))
	}
	if c.Mode.needsFrameSize() && c.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be > 0, got %d", c.FrameSize))
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		errs = append(errs, fmt.Errorf("alpha threshold must be within 0..255, got %d", c.AlphaThreshold))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be >= 1, got %d", c.Parallel))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// CandidateMethod returns the parsed method; call after Validate.
func (c *Config) CandidateMethod() utils.CandidateMethod {
	m, _ := utils.ParseCandidateMethod(c.Method)
	return m
}

// Options maps the config onto the library stages for c.Mode.
func (c *Config) Options() spritefix.Options {
	opt := spritefix.DefaultOptions()
	opt.Tolerance = c.Tolerance
	opt.SampleSize = c.SampleSize
	opt.TopN = c.TopN
	if c.SingleColor {
		opt = opt.SingleColor()
	}
	if c.HardEdges {
		opt.Edges = spritefix.EdgeBinary
	}
	opt.Metric, _ = spritefix.ParseMetric(c.Metric)
	opt.AlphaThreshold = uint8(max(0, min(255, c.AlphaThreshold)))

	opt.RemoveBackground = c.Mode == ModeTransparent || c.Mode == ModePipeline
	opt.LightBackground = c.Mode == ModeAlign && c.Aggressive
	if c.Mode.needsGrid() {
		opt.Cols, opt.Rows = c.Cols, c.Rows
	}
	if c.Mode.needsFrameSize() {
		opt.FrameSize = c.FrameSize
	}
	opt.Recenter = c.Mode == ModeAlign || c.Mode == ModePipeline
	return opt
}
