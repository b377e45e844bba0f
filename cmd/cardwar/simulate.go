package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/cardwar/internal/config"
	"github.com/lox/cardwar/internal/fileutil"
	"github.com/lox/cardwar/internal/game"
	"github.com/lox/cardwar/internal/randutil"
	"github.com/lox/cardwar/internal/simulator"
)

// SimulateCmd plays headless games with instant reveals
type SimulateCmd struct {
	Games             int           `short:"n" default:"1000" help:"Number of games to play"`
	Threshold         int           `short:"t" help:"Wins needed to take a game (overrides config)"`
	InterstitialEvery *int          `help:"Interstitial cadence in rounds, 0 disables (overrides config)"`
	Workers           int           `short:"w" help:"Parallel workers (default: GOMAXPROCS)"`
	Seed              *int64        `help:"Deterministic seed for reproducible runs (optional)"`
	Timeout           time.Duration `default:"10s" help:"Per-game timeout"`
	Out               string        `short:"o" type:"path" help:"Write the JSON report to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, cfg.LogLevel)

	gameCfg, err := c.gameConfig(cfg)
	if err != nil {
		return err
	}

	seed, _ := randutil.FromOptional(c.Seed)

	ctx, stop := signalContext(logger)
	defer stop()

	start := time.Now()
	result, err := simulator.New(simulator.Config{
		Games:             c.Games,
		WinThreshold:      gameCfg.WinThreshold,
		InterstitialEvery: gameCfg.InterstitialEvery,
		Workers:           c.Workers,
		Seed:              seed,
		Timeout:           c.Timeout,
		Logger:            logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	logger.Debug("Simulation timing", "elapsed", time.Since(start).Round(time.Millisecond))

	if c.Out != "" {
		if err := fileutil.WriteJSONAtomic(c.Out, result, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("Wrote report", "path", c.Out)
	}
	return nil
}

func (c *SimulateCmd) gameConfig(cfg *config.Config) (game.Config, error) {
	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return gameCfg, err
	}
	if gameCfg, err = overrideThreshold(gameCfg, c.Threshold); err != nil {
		return gameCfg, err
	}
	if c.InterstitialEvery != nil {
		if *c.InterstitialEvery < 0 {
			return gameCfg, fmt.Errorf("interstitial-every must not be negative, got %d", *c.InterstitialEvery)
		}
		gameCfg.InterstitialEvery = *c.InterstitialEvery
	}
	return gameCfg, nil
}
