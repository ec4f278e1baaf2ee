// Command spritefix turns sprite sheets with a painted-on backdrop into
// transparent, grid-exact, jitter-free sheets. It processes one image or
// every image in a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/setanarut/spritefix/internal/batch"
	"github.com/setanarut/spritefix/internal/config"
	"github.com/setanarut/spritefix/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "spritefix: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "spritefix: %v\n", err)
		return 1
	}

	logger, err := logging.New(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spritefix: %v\n", err)
		return 1
	}
	defer logger.Close()
	log := logger.With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	info, err := os.Stat(cfg.Input)
	if err != nil {
		log.Error("input not found", "path", cfg.Input, "err", err)
		return 1
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			log.Error("cannot create output directory", "path", cfg.OutputDir, "err", err)
			return 1
		}
	}

	if !info.IsDir() {
		p := &processor{cfg: &cfg, log: log.With("file", filepath.Base(cfg.Input))}
		if err := p.process(ctx, cfg.Input, cfg.Output); err != nil {
			log.Error("processing failed", "path", cfg.Input, "err", err)
			return 1
		}
		return 0
	}

	if cfg.Output != "" {
		log.Warn("-o is ignored for directory input, use -out-dir")
	}
	files, err := batch.Discover(cfg.Input)
	if err != nil {
		log.Error("cannot list input directory", "path", cfg.Input, "err", err)
		return 1
	}
	if len(files) == 0 {
		log.Warn("no images found", "dir", cfg.Input)
		return 0
	}
	log.Info("batch started", "dir", cfg.Input, "files", len(files), "mode", cfg.Mode, "parallel", cfg.Parallel)

	stats := batch.Run(ctx, files, cfg.Parallel, func(ctx context.Context, path string) error {
		p := &processor{cfg: &cfg, log: log.With("file", filepath.Base(path))}
		return p.process(ctx, path, "")
	})
	for _, f := range stats.Failures {
		log.Error("file failed", "path", f.Path, "err", f.Err)
	}
	log.Info("batch complete", "total", stats.Total, "succeeded", stats.Succeeded, "failed", stats.Failed)
	if stats.Failed > 0 {
		return 1
	}
	return 0
}
