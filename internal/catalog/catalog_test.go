package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultHasUniqueSafeNames(t *testing.T) {
	entries := Default()
	if len(entries) == 0 {
		t.Fatal("default catalog is empty")
	}

	normalized, err := Normalize(entries)
	if err != nil {
		t.Fatalf("Normalize(Default()) failed: %v", err)
	}
	if len(normalized) != len(entries) {
		t.Errorf("default catalog has duplicates: %d entries, %d unique", len(entries), len(normalized))
	}
	if entries[0].Name != "1Password 7" {
		t.Errorf("first entry = %q, catalog order changed", entries[0].Name)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
apps:
  - name: Firefox
  - name: "  Signal  "
    bundle_id: org.whispersystems.signal-desktop
  - name: Slack
    feed_url: https://example.com/slack.xml
    app_name: Slack Desktop
    skip_lookup: true
`)

	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Name != "Signal" {
		t.Errorf("name not trimmed: %q", entries[1].Name)
	}
	if entries[1].BundleID != "org.whispersystems.signal-desktop" {
		t.Errorf("BundleID = %q", entries[1].BundleID)
	}
	slack := entries[2]
	if slack.FeedURL != "https://example.com/slack.xml" || slack.AppName != "Slack Desktop" || !slack.SkipLookup {
		t.Errorf("unexpected overrides: %+v", slack)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "invalid yaml", input: "apps: [", wantErr: "failed to parse catalog"},
		{name: "empty name", input: "apps:\n  - name: \"\"\n", wantErr: "name is required"},
		{name: "only punctuation", input: "apps:\n  - name: \"._-\"\n", wantErr: "no usable characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeDropsDuplicates(t *testing.T) {
	entries, err := Names("Firefox", "zoom.us", "Firefox", "zoomus", "Docker")
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Name)
	}
	want := []string{"Firefox", "zoom.us", "Docker"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		entries, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(entries) != len(Default()) {
			t.Errorf("expected default catalog, got %d entries", len(entries))
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yml")
		if err := os.WriteFile(path, []byte("apps:\n  - name: Firefox\n"), 0600); err != nil {
			t.Fatal(err)
		}
		entries, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "Firefox" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
