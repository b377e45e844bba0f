package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardwar/internal/config"
	"github.com/lox/cardwar/internal/game"
)

func TestLoadConfigAppliesLogLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardwar.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "warn"

game {
  win_threshold = 7
}
`), 0o644))

	cfg, err := loadConfig(&Globals{Config: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7, cfg.Game.WinThreshold)

	cfg, err = loadConfig(&Globals{Config: path, LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	_, err := loadConfig(&Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), LogLevel: "loud"})
	assert.ErrorContains(t, err, "log_level")
}

func TestSetupLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, log.InfoLevel, setupLogger(&buf, "bogus").GetLevel())
}

func TestConfigFlagDefaultsToConfigFile(t *testing.T) {
	t.Setenv("CARDWAR_CONFIG", "")
	require.NoError(t, os.Unsetenv("CARDWAR_CONFIG"))

	var cli CLI
	parser, err := kong.New(&cli, cliOptions()...)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"simulate"})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultFile, cli.Config)
}

func TestOverrideThreshold(t *testing.T) {
	base := game.DefaultConfig()
	base.WinThreshold = 5

	cfg, err := overrideThreshold(base, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.WinThreshold)

	cfg, err = overrideThreshold(base, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.WinThreshold)

	_, err = overrideThreshold(base, -1)
	assert.ErrorContains(t, err, "threshold must not be negative")
}

func TestSimulateRejectsNegativeOverrides(t *testing.T) {
	cfg, err := loadConfig(&Globals{Config: filepath.Join(t.TempDir(), "missing.hcl")})
	require.NoError(t, err)

	_, err = (&SimulateCmd{Threshold: -3}).gameConfig(cfg)
	assert.ErrorContains(t, err, "threshold must not be negative")

	every := -1
	_, err = (&SimulateCmd{InterstitialEvery: &every}).gameConfig(cfg)
	assert.ErrorContains(t, err, "interstitial-every")

	every = 0
	gameCfg, err := (&SimulateCmd{Threshold: 4, InterstitialEvery: &every}).gameConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, gameCfg.WinThreshold)
	assert.Zero(t, gameCfg.InterstitialEvery)
}
