// Package manifest reads update metadata from application Info.plist files.
package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Keys read from every manifest
const (
	KeyFeedURL    = "SUFeedURL"
	KeyBundleID   = "CFBundleIdentifier"
	KeyBundleName = "CFBundleName"
)

// Reader kinds accepted by New
const (
	KindAuto       = "auto"
	KindPlistBuddy = "plistbuddy"
	KindPlist      = "plist"
)

// DefaultPlistBuddyPath is where macOS ships PlistBuddy
const DefaultPlistBuddyPath = "/usr/libexec/PlistBuddy"

// Reader reads one named string field from a manifest. An absent field is
// returned as "" with a nil error.
type Reader interface {
	Field(ctx context.Context, path, key string) (string, error)
}

// Fields holds the three values the generator consumes
type Fields struct {
	FeedURL    string
	BundleID   string
	BundleName string
}

// ReadFields reads the feed URL, bundle identifier and bundle name from path
func ReadFields(ctx context.Context, r Reader, path string) (Fields, error) {
	var f Fields
	targets := []struct {
		key string
		dst *string
	}{
		{KeyFeedURL, &f.FeedURL},
		{KeyBundleID, &f.BundleID},
		{KeyBundleName, &f.BundleName},
	}
	for _, target := range targets {
		value, err := r.Field(ctx, path, target.key)
		if err != nil {
			return Fields{}, fmt.Errorf("failed to read %s from %s: %w", target.key, path, err)
		}
		*target.dst = value
	}
	return f, nil
}

// New returns the reader for kind. KindAuto prefers PlistBuddy when the
// binary exists and falls back to native decoding otherwise.
func New(kind, plistBuddyPath string) (Reader, error) {
	if plistBuddyPath == "" {
		plistBuddyPath = DefaultPlistBuddyPath
	}

	switch strings.ToLower(kind) {
	case "", KindAuto:
		if info, err := os.Stat(plistBuddyPath); err == nil && !info.IsDir() {
			return NewPlistBuddy(plistBuddyPath), nil
		}
		return NewPlistFile(), nil
	case KindPlistBuddy:
		return NewPlistBuddy(plistBuddyPath), nil
	case KindPlist:
		return NewPlistFile(), nil
	default:
		return nil, fmt.Errorf("unknown manifest reader %q (want %s, %s or %s)", kind, KindAuto, KindPlistBuddy, KindPlist)
	}
}
