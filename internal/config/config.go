// Package config loads cardwar settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cardwar/internal/ads"
	"github.com/lox/cardwar/internal/game"
)

// DefaultFile is the config file looked up when none is given
const DefaultFile = "cardwar.hcl"

// Config represents the complete configuration file
type Config struct {
	LogLevel string          `hcl:"log_level,optional"`
	Game     *GameSettings   `hcl:"game,block"`
	Ads      *AdsSettings    `hcl:"ads,block"`
	Server   *ServerSettings `hcl:"server,block"`
}

// GameSettings mirrors game.Config with durations as strings
type GameSettings struct {
	WinThreshold      int    `hcl:"win_threshold,optional"`
	RevealDelay       string `hcl:"reveal_delay,optional"`
	OutcomeHold       string `hcl:"outcome_hold,optional"`
	InterstitialEvery *int   `hcl:"interstitial_every,optional"`
}

// AdsSettings configures the interstitial presenter
type AdsSettings struct {
	LoadDelay string `hcl:"load_delay,optional"`
}

// ServerSettings contains WebSocket server configuration
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	every := game.DefaultInterstitialEvery
	return &Config{
		LogLevel: "info",
		Game: &GameSettings{
			WinThreshold:      game.DefaultWinThreshold,
			RevealDelay:       game.DefaultRevealDelay.String(),
			OutcomeHold:       game.DefaultOutcomeHold.String(),
			InterstitialEvery: &every,
		},
		Ads: &AdsSettings{
			LoadDelay: ads.DefaultLoadDelay.String(),
		},
		Server: &ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; omitted values are filled from the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if c.Game == nil {
		c.Game = def.Game
	}
	if c.Game.WinThreshold == 0 {
		c.Game.WinThreshold = def.Game.WinThreshold
	}
	if c.Game.RevealDelay == "" {
		c.Game.RevealDelay = def.Game.RevealDelay
	}
	if c.Game.OutcomeHold == "" {
		c.Game.OutcomeHold = def.Game.OutcomeHold
	}
	if c.Game.InterstitialEvery == nil {
		c.Game.InterstitialEvery = def.Game.InterstitialEvery
	}

	if c.Ads == nil {
		c.Ads = def.Ads
	}
	if c.Ads.LoadDelay == "" {
		c.Ads.LoadDelay = def.Ads.LoadDelay
	}

	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
}

// GameConfig converts the game block into engine settings
func (c *Config) GameConfig() (game.Config, error) {
	reveal, err := time.ParseDuration(c.Game.RevealDelay)
	if err != nil {
		return game.Config{}, fmt.Errorf("invalid reveal_delay: %w", err)
	}
	hold, err := time.ParseDuration(c.Game.OutcomeHold)
	if err != nil {
		return game.Config{}, fmt.Errorf("invalid outcome_hold: %w", err)
	}

	gc := game.Config{
		WinThreshold:      c.Game.WinThreshold,
		RevealDelay:       reveal,
		OutcomeHold:       hold,
		InterstitialEvery: *c.Game.InterstitialEvery,
	}
	return gc, gc.Validate()
}

// AdLoadDelay returns the simulated interstitial load time
func (c *Config) AdLoadDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Ads.LoadDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid load_delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("load_delay must not be negative, got %s", d)
	}
	return d, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.GameConfig(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if _, err := c.AdLoadDelay(); err != nil {
		return fmt.Errorf("ads: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// ServerAddress returns the host:port the server listens on
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
