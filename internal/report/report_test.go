package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

var firefoxID = uuid.MustParse("768a574c-75a2-536d-8785-ef9512981184")

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "added",
			event: Event{Type: TypeAdded, App: "Firefox", ClassName: "AppFirefoxCheck", UUID: firefoxID.String(), File: "Firefox.swift"},
			want:  "Adding AppFirefoxCheck with uuid:768a574c-75a2-536d-8785-ef9512981184 to Firefox.swift",
		},
		{
			name:  "planned",
			event: Event{Type: TypePlanned, ClassName: "AppFirefoxCheck", UUID: firefoxID.String(), File: "Firefox.swift"},
			want:  "Would add AppFirefoxCheck with uuid:768a574c-75a2-536d-8785-ef9512981184 to Firefox.swift",
		},
		{
			name:  "unsupported via app store",
			event: Event{Type: TypeUnsupported, App: "Signal", Code: CodeAppStore},
			want:  "Signal is not supported via app store",
		},
		{
			name:  "lookup failed",
			event: Event{Type: TypeUnsupported, App: "Signal", Code: CodeLookupFailed},
			want:  "Signal is not supported",
		},
		{
			name:  "error",
			event: Event{Type: TypeError, App: "Docker", Message: "permission denied"},
			want:  "Docker: permission denied",
		},
		{name: "found is silent", event: Event{Type: TypeFound, App: "Firefox"}},
		{name: "exists is silent", event: Event{Type: TypeExists, App: "Firefox"}},
		{name: "not found is silent", event: Event{Type: TypeNotFound, App: "Hush"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.event); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedirectLine(t *testing.T) {
	want := `<permanent-redirect tal:omit-tag target="https://paretosecurity.com/check/768a574c-75a2-536d-8785-ef9512981184" />`
	if got := RedirectLine(DefaultRedirectBase, firefoxID); got != want {
		t.Errorf("RedirectLine = %q", got)
	}
	if got := RedirectLine(DefaultRedirectBase+"/", firefoxID); got != want {
		t.Errorf("trailing slash not trimmed: %q", got)
	}
}

func TestReporterText(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false, "")

	if err := r.Emit(Event{Type: TypeFound, App: "Firefox"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Emit(Event{Type: TypeAdded, ClassName: "AppFirefoxCheck", UUID: firefoxID.String(), File: "Firefox.swift"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Redirects([]uuid.UUID{firefoxID}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Adding AppFirefoxCheck") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "" {
		t.Errorf("expected blank separator, got %q", lines[1])
	}
	if lines[2] != RedirectLine(DefaultRedirectBase, firefoxID) {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestReporterVerboseIDs(t *testing.T) {
	found := Event{Type: TypeFound, App: "Firefox", SafeName: "Firefox", UUID: firefoxID.String()}

	var quiet bytes.Buffer
	if err := New(&quiet, false, "").Emit(found); err != nil {
		t.Fatal(err)
	}
	if quiet.Len() != 0 {
		t.Errorf("found printed without verbose: %q", quiet.String())
	}

	var buf bytes.Buffer
	r := New(&buf, false, "")
	r.Verbose = true
	if err := r.Emit(found); err != nil {
		t.Fatal(err)
	}
	if err := r.Emit(Event{Type: TypeNotFound, App: "Hush"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Firefox=768a574c-75a2-536d-8785-ef9512981184\n" {
		t.Errorf("verbose output = %q", got)
	}
}

func TestReporterNoRedirects(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, false, "").Redirects(nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestReporterJSON(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true, "https://example.com/c")

	if err := r.Emit(Event{Type: TypeNotFound, App: "Hush"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Redirects([]uuid.UUID{firefoxID}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}

	var events []Event
	for _, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		events = append(events, e)
	}
	if events[0].Type != TypeNotFound || events[0].App != "Hush" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Type != TypeRedirect || events[1].UUID != firefoxID.String() {
		t.Errorf("unexpected redirect event: %+v", events[1])
	}
	if !strings.Contains(events[1].Message, `target="https://example.com/c/768a574c`) {
		t.Errorf("redirect base not applied: %q", events[1].Message)
	}
}
