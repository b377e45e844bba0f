package main

import (
	"fmt"
	"io"
	"os"

	"github.com/coder/quartz"

	"github.com/lox/cardwar/internal/ads"
	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/game"
	"github.com/lox/cardwar/internal/randutil"
	"github.com/lox/cardwar/internal/tui"
)

// PlayCmd runs the interactive terminal game
type PlayCmd struct {
	Threshold int    `short:"t" help:"Wins needed to take the game (overrides config)"`
	Seed      *int64 `help:"Deterministic shuffle seed (optional)"`
	NoColor   bool   `help:"Disable colour output"`
	LogFile   string `type:"path" help:"Write logs to this file; the terminal is owned by the game"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger := setupLogger(out, cfg.LogLevel)

	if c.NoColor {
		tui.DisableColor()
	}

	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return err
	}
	gameCfg, err = overrideThreshold(gameCfg, c.Threshold)
	if err != nil {
		return err
	}

	loadDelay, err := cfg.AdLoadDelay()
	if err != nil {
		return err
	}

	seed, rng := randutil.FromOptional(c.Seed)
	logger.Info("Starting interactive game", "seed", seed, "winThreshold", gameCfg.WinThreshold)

	clock := quartz.NewReal()
	presenter := ads.NewPresenter(clock, logger, loadDelay)
	engine := game.NewEngine(deck.NewDeck(rng),
		game.WithConfig(gameCfg),
		game.WithClock(clock),
		game.WithLogger(logger),
		game.WithInterstitialPresenter(presenter))
	defer engine.Close()

	err = tui.Run(engine, tui.Options{
		WinThreshold: gameCfg.WinThreshold,
		Ads:          presenter,
		Logger:       logger,
	})

	stats := presenter.Stats()
	logger.Info("Session finished", "interstitialsShown", stats.Shown, "interstitialsMissed", stats.Missed)
	return err
}
