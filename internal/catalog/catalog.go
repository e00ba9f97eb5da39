// Package catalog holds the list of applications checks are generated for.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"appcheckgen/internal/logging"
	"appcheckgen/internal/naming"
)

// Entry is one application in the catalog
type Entry struct {
	// Name is the display name, matching "<Name>.app" on disk
	Name string `yaml:"name"`

	// BundleID overrides CFBundleIdentifier from the manifest
	BundleID string `yaml:"bundle_id,omitempty"`

	// FeedURL overrides SUFeedURL from the manifest
	FeedURL string `yaml:"feed_url,omitempty"`

	// AppName overrides CFBundleName from the manifest
	AppName string `yaml:"app_name,omitempty"`

	// SkipLookup treats an app without a feed as eligible without asking the App Store
	SkipLookup bool `yaml:"skip_lookup,omitempty"`
}

// File is the on-disk catalog document
type File struct {
	Apps []Entry `yaml:"apps"`
}

var defaultNames = []string{
	"1Password 7",
	"Firefox",
	"Bitwarden",
	"Cyberduck",
	"Dashlane",
	"Docker",
	"Dropbox",
	"Enpass",
	"GitHub Desktop",
	"Google Chrome",
	"Hush",
	"iTerm",
	"LibreOffice",
	"Muzzle",
	"NordLayer",
	"Resilio Sync",
	"Signal",
	"Slack",
	"Sublime Text",
	"Tailscale",
	"Visual Studio Code",
	"WireGuard",
	"zoom.us",
}

// Default returns the built-in catalog.
func Default() []Entry {
	entries := make([]Entry, 0, len(defaultNames))
	for _, name := range defaultNames {
		entries = append(entries, Entry{Name: name})
	}
	return entries
}

// Names builds a catalog from bare display names.
func Names(names ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{Name: name})
	}
	return Normalize(entries)
}

// Load reads a YAML catalog file. An empty path returns the built-in catalog.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes a YAML catalog document
func Parse(data []byte) ([]Entry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return Normalize(file.Apps)
}

// Normalize trims names, rejects empty ones and drops entries whose safe name
// was already seen, keeping the first. Each remaining entry maps to a unique
// output file.
func Normalize(entries []Entry) ([]Entry, error) {
	seen := make(map[string]string, len(entries))
	out := make([]Entry, 0, len(entries))

	for i, entry := range entries {
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			return nil, fmt.Errorf("entry %d: name is required", i+1)
		}

		safe := naming.SafeName(entry.Name)
		if safe == "" {
			return nil, fmt.Errorf("entry %d: name %q has no usable characters", i+1, entry.Name)
		}
		if first, ok := seen[safe]; ok {
			if first != entry.Name {
				logging.Warning("Catalog entry %q collides with %q (%s), ignoring it", entry.Name, first, safe)
			}
			continue
		}
		seen[safe] = entry.Name
		out = append(out, entry)
	}

	return out, nil
}
