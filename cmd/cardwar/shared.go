package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/cardwar/internal/config"
	"github.com/lox/cardwar/internal/game"
)

// loadConfig reads and validates the config file, applying flag overrides
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", g.Config, err)
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideThreshold applies a --threshold flag; zero keeps the configured value
func overrideThreshold(cfg game.Config, threshold int) (game.Config, error) {
	if threshold < 0 {
		return cfg, fmt.Errorf("threshold must not be negative, got %d", threshold)
	}
	if threshold > 0 {
		cfg.WinThreshold = threshold
	}
	return cfg, nil
}

// setupLogger builds the process logger at the configured level
func setupLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Debug("Received signal, shutting down gracefully")
	}()
	return ctx, stop
}
