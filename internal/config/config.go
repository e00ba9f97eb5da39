package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"appcheckgen/internal/appstore"
	"appcheckgen/internal/locator"
	"appcheckgen/internal/manifest"
	"appcheckgen/internal/naming"
	"appcheckgen/internal/report"
)

// Config holds all configuration settings for a generation run
type Config struct {
	// OutputDir is where generated checks are written
	OutputDir string `toml:"output_dir"`

	// Extension of generated files
	Extension string `toml:"extension"`

	// TemplatePath is the check template; empty uses the embedded one
	TemplatePath string `toml:"template_path"`

	// CatalogPath is a YAML catalog; empty uses the built-in list
	CatalogPath string `toml:"catalog_path"`

	// RedirectBase prefixes every printed redirect target
	RedirectBase string `toml:"redirect_base"`

	Search   SearchConfig   `toml:"search"`
	Manifest ManifestConfig `toml:"manifest"`
	Lookup   LookupConfig   `toml:"lookup"`
}

// SearchConfig holds the application folders searched for manifests
type SearchConfig struct {
	SystemRoot  string `toml:"system_root"`
	UserRoot    string `toml:"user_root"`
	UserEnabled bool   `toml:"user_enabled"`
}

// ManifestConfig selects how manifest fields are read
type ManifestConfig struct {
	Reader         string `toml:"reader"`
	PlistBuddyPath string `toml:"plistbuddy_path"`
}

// LookupConfig configures the App Store fallback for apps without a feed
type LookupConfig struct {
	Enabled       bool     `toml:"enabled"`
	BaseURL       string   `toml:"base_url"`
	Country       string   `toml:"country"`
	Entity        string   `toml:"entity"`
	DesktopMarker string   `toml:"desktop_marker"`
	Timeout       Duration `toml:"timeout"`

	// Strict turns lookup network errors into a failed run instead of a skip
	Strict bool `toml:"strict"`
}

// Duration is a time.Duration written as a string ("30s") in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		OutputDir:    ".",
		Extension:    naming.DefaultExtension,
		RedirectBase: report.DefaultRedirectBase,
		Search: SearchConfig{
			SystemRoot:  locator.SystemRoot,
			UserRoot:    locator.UserRoot,
			UserEnabled: true,
		},
		Manifest: ManifestConfig{
			Reader:         manifest.KindAuto,
			PlistBuddyPath: manifest.DefaultPlistBuddyPath,
		},
		Lookup: LookupConfig{
			Enabled:       true,
			BaseURL:       appstore.DefaultBaseURL,
			Country:       appstore.DefaultCountry,
			Entity:        appstore.DefaultEntity,
			DesktopMarker: appstore.DefaultDesktopMarker,
			Timeout:       Duration{appstore.DefaultTimeout},
		},
	}
}

// Default returns the default configuration with OutputDir made absolute
func Default() (*Config, error) {
	config := defaultConfig()
	if err := config.finalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load loads the configuration from file and environment variables. An empty
// path reads DefaultConfigFile if present; an explicit path must exist.
func Load(path string) (*Config, error) {
	config := defaultConfig()

	configPath := path
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	} else if path != "" {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.finalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if outputDir := os.Getenv(EnvOutputDir); outputDir != "" {
		c.OutputDir = outputDir
	}

	if catalogPath := os.Getenv(EnvCatalog); catalogPath != "" {
		c.CatalogPath = catalogPath
	}

	if templatePath := os.Getenv(EnvTemplate); templatePath != "" {
		c.TemplatePath = templatePath
	}

	if lookupURL := os.Getenv(EnvLookupURL); lookupURL != "" {
		c.Lookup.BaseURL = lookupURL
	}

	if redirectBase := os.Getenv(EnvRedirectBase); redirectBase != "" {
		c.RedirectBase = redirectBase
	}

	if reader := os.Getenv(EnvManifestReader); reader != "" {
		c.Manifest.Reader = reader
	}

	if strict := os.Getenv(EnvStrictLookup); strict != "" {
		value, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvStrictLookup, err)
		}
		c.Lookup.Strict = value
	}

	return nil
}

func (c *Config) finalize() error {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if !filepath.IsAbs(c.OutputDir) {
		absPath, err := filepath.Abs(c.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for output_dir: %w", err)
		}
		c.OutputDir = absPath
	}
	if c.Extension == "" {
		c.Extension = naming.DefaultExtension
	}
	return nil
}

// Roots returns the manifest search roots in lookup order
func (c *Config) Roots() []string {
	roots := []string{c.Search.SystemRoot}
	if c.Search.UserEnabled {
		roots = append(roots, c.Search.UserRoot)
	}
	return roots
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("OutputDir: %s", c.OutputDir))
	parts = append(parts, fmt.Sprintf("Roots: %s", strings.Join(c.Roots(), ",")))
	parts = append(parts, fmt.Sprintf("Reader: %s", c.Manifest.Reader))
	parts = append(parts, fmt.Sprintf("Lookup: %t (strict=%t)", c.Lookup.Enabled, c.Lookup.Strict))
	return strings.Join(parts, ", ")
}
