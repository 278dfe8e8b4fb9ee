package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"V" help:"Show version"`
	Verbose bool             `short:"v" help:"Verbose logging"`

	Run   RunCmd   `cmd:"" help:"Run the Monte Carlo simulation"`
	Doors DoorsCmd `cmd:"" help:"Play a few trials step by step"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("montyhall"),
		kong.Description("Monte Carlo simulator for the Monty Hall problem"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger := setupLogger(cli.Verbose)
	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

func setupLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level})
}
