package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/app"
	"github.com/mikelcalvo/financeiro-cli/internal/cli"
	"github.com/mikelcalvo/financeiro-cli/internal/logger"
	"github.com/mikelcalvo/financeiro-cli/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	// Help doesn't need config
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		cli.New(nil, os.Stdout).Usage()
		return 0
	}

	// Version
	if cmd == "version" || cmd == "-v" || cmd == "--version" {
		fmt.Printf("Financeiro CLI v%s\n", tui.Version)
		fmt.Printf("Created by %s in %s\n", tui.Author, tui.Year)
		return 0
	}

	// Load config
	config, err := api.LoadConfig()
	if err != nil {
		fmt.Printf("%sError: %s%s\n", cli.Red, err, cli.Reset)
		return 1
	}

	logFile := config.LogFile
	if os.Getenv("FIN_DEBUG") != "" && cmd != "" && cmd != "tui" {
		logFile = "-"
	}
	log, closeLog := logger.New(logger.Config{Level: config.LogLevel, File: logFile, Version: tui.Version})
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := api.NewClient(config, log)

	// No arguments or "tui" command -> launch TUI
	if cmd == "" || cmd == "tui" {
		client.DetectConnection(ctx)
		log.Info().Str("mode", client.Mode).Str("url", client.ActiveURL).Msg("starting tui")

		section := ""
		if len(args) > 1 {
			section = args[1]
		}
		a := app.New(ctx, client, app.Options{Section: section, Log: log})
		if err := tui.RunTUI(a, tui.Status{Brand: config.Brand, Mode: client.Mode, URL: client.ActiveURL}); err != nil {
			fmt.Printf("%sError: %s%s\n", cli.Red, err, cli.Reset)
			return 1
		}
		return 0
	}

	if err := cli.New(client, os.Stdout).Run(ctx, args); err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		fmt.Printf("%sError: %s%s\n", cli.Red, err, cli.Reset)
		return 1
	}
	return 0
}
