package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/cardwar/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"${config_file}" env:"CARDWAR_CONFIG" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" env:"CARDWAR_LOG_LEVEL" help:"Log level: debug, info, warn, error (overrides config)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play war in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Serve games over WebSocket"`
	Simulate SimulateCmd      `cmd:"" help:"Play many headless games and report statistics"`
}

func cliOptions() []kong.Option {
	return []kong.Option{
		kong.Name("cardwar"),
		kong.Description("The card game war: higher card wins the round"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
	}
}

func main() {
	// A local .env may supply CARDWAR_* variables; it is optional.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli, cliOptions()...)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
