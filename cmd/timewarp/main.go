// Command timewarp computes a time-warp alignment path between two media
// files (or replays a previously computed one) and writes its textual form
// to the configured log file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/halvstad/timewarp/config"
	"github.com/halvstad/timewarp/engine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseFlags(args, config.Default())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile + ".runlog",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
	}
	defer rotator.Close()

	logger := log.NewWithOptions(rotator, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})

	eng := engine.New(cfg)
	eng.Logger = logger

	path, err := eng.Align(context.Background())
	if err != nil {
		logger.Error("alignment failed", "err", err)
		return err
	}

	if err := os.WriteFile(cfg.LogFile, []byte(path.String()), 0o644); err != nil {
		return err
	}
	logger.Info("alignment complete", "log_file", cfg.LogFile)
	return nil
}
