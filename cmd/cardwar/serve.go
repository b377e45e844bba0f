package main

import (
	"os"
	"sync/atomic"

	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/game"
	"github.com/lox/cardwar/internal/randutil"
	"github.com/lox/cardwar/internal/server"
)

// ServeCmd serves one game per WebSocket connection
type ServeCmd struct {
	Addr string `short:"a" env:"CARDWAR_ADDR" help:"Server address to bind to (overrides config)"`
	Seed *int64 `help:"Deterministic RNG seed; connection n shuffles with a seed derived from it"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, cfg.LogLevel)

	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return err
	}

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	seed, _ := randutil.FromOptional(c.Seed)
	logger.Info("Starting cardwar server",
		"addr", addr,
		"seed", seed,
		"winThreshold", gameCfg.WinThreshold,
		"revealDelay", gameCfg.RevealDelay,
		"outcomeHold", gameCfg.OutcomeHold,
		"interstitialEvery", gameCfg.InterstitialEvery)

	var connections atomic.Int64
	newEngine := func() *game.Engine {
		n := connections.Add(1) - 1
		rng := randutil.New(randutil.Derive(seed, int(n)))
		return game.NewEngine(deck.NewDeck(rng),
			game.WithConfig(gameCfg),
			game.WithLogger(logger))
	}

	ctx, stop := signalContext(logger)
	defer stop()

	return server.NewServer(addr, logger, newEngine).Start(ctx)
}
