package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %q", info.Platform)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "v1.2.0",
		Commit:    "0123456789abcdef",
		BuildDate: "2026-01-02T03:04:05Z",
		GoVersion: "go1.24.4",
		Platform:  "darwin/arm64",
	}
	want := "appcheck-gen v1.2.0 (commit 0123456789ab, built 2026-01-02T03:04:05Z, go1.24.4 darwin/arm64)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
