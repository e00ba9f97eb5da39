// Package main is the entry point for appcheck-gen
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"appcheckgen/internal/cli"
	"appcheckgen/internal/logging"
	"appcheckgen/internal/telemetry"
	"appcheckgen/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.Initialize(os.Stderr, os.Getenv("DEBUG") == "true")

	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitializeFromEnv(ctx, version.Get().Version)
	if err != nil {
		logging.Warning("Failed to initialize telemetry: %v", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warning("Error shutting down telemetry: %v", err)
			}
		}()
	}

	return cli.ExecuteContext(ctx, args, cli.Options{}, os.Stdout, os.Stderr)
}
