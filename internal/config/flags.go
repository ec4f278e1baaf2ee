package config

// This file implements CLI flag parsing and help text. A -config file is
// loaded before the flags are applied so flags win over file values.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrHelp is returned when -h or -help was requested.
var ErrHelp = flag.ErrHelp

// ParseFlags parses args (without the program name) into cfg.
func ParseFlags(cfg *Config, args []string) error {
	if path := configPath(args); path != "" {
		if err := Load(path, cfg); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}

	fs := flag.NewFlagSet("spritefix", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var mode string
	var noAggressive bool
	fs.StringVar(&mode, "mode", string(cfg.Mode), "transparent, align, analyze, grid or pipeline")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")

	fs.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "background color tolerance")
	fs.Float64Var(&cfg.Tolerance, "t", cfg.Tolerance, "shorthand for -tolerance")
	fs.IntVar(&cfg.SampleSize, "sample", cfg.SampleSize, "border pixels sampled from each end of every edge")
	fs.IntVar(&cfg.TopN, "top", cfg.TopN, "maximum number of background colors (0 = no limit)")
	fs.BoolVar(&cfg.SingleColor, "single-color", cfg.SingleColor, "remove only the primary background color")
	fs.BoolVar(&cfg.SingleColor, "s", cfg.SingleColor, "shorthand for -single-color")
	fs.BoolVar(&cfg.HardEdges, "hard-edges", cfg.HardEdges, "binary alpha instead of smooth edges")
	fs.StringVar(&cfg.Method, "method", cfg.Method, "candidate method: border, dominantcolor or kmeans")
	fs.StringVar(&cfg.Metric, "metric", cfg.Metric, "color distance: rgb or lab")
	fs.BoolVar(&noAggressive, "no-aggressive", false, "skip the light-background pass in align mode")

	fs.IntVar(&cfg.Cols, "cols", cfg.Cols, "grid columns")
	fs.IntVar(&cfg.Rows, "rows", cfg.Rows, "grid rows")
	fs.IntVar(&cfg.FrameSize, "frame", cfg.FrameSize, "frame size in pixels")
	fs.IntVar(&cfg.AlphaThreshold, "threshold", cfg.AlphaThreshold, "alpha a pixel must exceed to count as content")

	fs.StringVar(&cfg.Output, "o", cfg.Output, "output file (single input only)")
	fs.StringVar(&cfg.OutputDir, "out-dir", cfg.OutputDir, "output directory")
	fs.StringVar(&cfg.FramesDir, "frames-dir", cfg.FramesDir, "also write every frame as a separate PNG")
	fs.BoolVar(&cfg.Swatch, "swatch", cfg.Swatch, "write detected background colors as a PNG strip")

	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "files processed concurrently in batch mode")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append logs to this file")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printUsage(os.Stdout, fs)
		}
		return err
	}
	cfg.Mode = Mode(strings.ToLower(mode))
	if noAggressive {
		cfg.Aggressive = false
	}

	switch fs.NArg() {
	case 0:
		return fmt.Errorf("missing input path (see -h)")
	case 1:
		cfg.Input = fs.Arg(0)
	default:
		return fmt.Errorf("expected one input path, got %d", fs.NArg())
	}
	return nil
}

// configPath finds the value of -config/--config ahead of full parsing.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: spritefix [options] <image|directory>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  spritefix knight.png                       remove background, resize to 6x4 x 128px, center frames")
	fmt.Fprintln(w, "  spritefix -mode transparent -t 50 ./sprites")
	fmt.Fprintln(w, "  spritefix -mode analyze -cols 6 -rows 4 sheet.png")
	fmt.Fprintln(w, "  spritefix -mode grid -cols 8 -rows 8 -frame 32 sheet.png")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}
