package cli

import (
	"appcheckgen/internal/config"
	"appcheckgen/internal/generator"
	"appcheckgen/internal/manifest"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitInvalidUsage = 2
)

// Options injects collaborators into the command tree. Zero values are built
// from the loaded configuration.
type Options struct {
	// Config replaces loading from --config / appcheck.toml when set
	Config *config.Config

	// Manifests replaces the configured manifest reader
	Manifests manifest.Reader

	// Resolver replaces the App Store client; ignored when lookups are disabled
	Resolver generator.Resolver
}

// IDEvent is the JSON record printed by the ids command
type IDEvent struct {
	Type      string `json:"type"`
	App       string `json:"app"`
	SafeName  string `json:"safe_name"`
	ClassName string `json:"class_name"`
	UUID      string `json:"uuid"`
}
