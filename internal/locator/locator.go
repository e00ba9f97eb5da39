// Package locator finds application manifests in the conventional install locations.
package locator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	// SystemRoot is the system-wide applications folder
	SystemRoot = "/Applications"

	// UserRoot is the per-user applications folder
	UserRoot = "~/Applications"
)

// Locator resolves display names to manifest paths, trying roots in order.
type Locator struct {
	roots []string
}

// New creates a locator over the given roots. Empty roots are ignored and a
// leading "~" expands to the user's home directory.
func New(roots ...string) *Locator {
	l := &Locator{}
	for _, root := range roots {
		if root == "" {
			continue
		}
		l.roots = append(l.roots, ExpandHome(root))
	}
	return l
}

// Roots returns the search roots in lookup order
func (l *Locator) Roots() []string {
	return append([]string(nil), l.roots...)
}

// ManifestPath returns where the manifest for name would live under root
// Pattern: <root>/<name>.app/Contents/Info.plist
func ManifestPath(root, name string) string {
	return filepath.Join(root, name+".app", "Contents", "Info.plist")
}

// Locate returns the first existing manifest for name.
func (l *Locator) Locate(name string) (string, bool) {
	for _, root := range l.roots {
		path := ManifestPath(root, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return path, true
	}
	return "", false
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(xdg.Home, path[2:])
	}
	return path
}
