package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/elishgi/moneyPlusMinus/internal/client"
	"github.com/elishgi/moneyPlusMinus/internal/config"
	"github.com/elishgi/moneyPlusMinus/internal/log"
	"github.com/elishgi/moneyPlusMinus/internal/tui"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	// The alternate screen owns stdout; keep logs quiet unless asked.
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentTUI,
		Format:    cfg.LogFormat,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	api := client.New(cfg.ServerURL)
	drafts := client.NewDrafts(cfg.DataDir)

	if err := tui.Run(api, drafts, cfg.SaveDebounce); err != nil {
		fmt.Fprintln(os.Stderr, "tui error:", err)
		os.Exit(1)
	}
}
