// Package report prints generation progress and redirect directives.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"appcheckgen/internal/logging"
)

// Event types
const (
	TypeFound       = "found"
	TypeAdded       = "added"
	TypePlanned     = "planned"
	TypeExists      = "exists"
	TypeNotFound    = "not_found"
	TypeUnsupported = "unsupported"
	TypeError       = "error"
	TypeRedirect    = "redirect"
)

// Codes attached to unsupported events
const (
	CodeAppStore     = "app_store"
	CodeLookupFailed = "lookup_failed"
)

// DefaultRedirectBase is where check ids are published
const DefaultRedirectBase = "https://paretosecurity.com/check"

// Event is one progress record
type Event struct {
	Type      string `json:"type"`
	App       string `json:"app,omitempty"`
	SafeName  string `json:"safe_name,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	UUID      string `json:"uuid,omitempty"`
	File      string `json:"file,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
}

// Reporter writes events as text lines or JSON lines
type Reporter struct {
	out          io.Writer
	json         bool
	redirectBase string

	// Verbose prints "<safe>=<uuid>" for every installed app in text mode
	Verbose bool
}

// New creates a reporter. An empty redirectBase uses DefaultRedirectBase.
func New(out io.Writer, jsonOutput bool, redirectBase string) *Reporter {
	if redirectBase == "" {
		redirectBase = DefaultRedirectBase
	}
	return &Reporter{out: out, json: jsonOutput, redirectBase: redirectBase}
}

// Emit writes one event. In text mode skips that need no attention
// (found, exists, not_found) only go to the debug log, except found in
// verbose mode.
func (r *Reporter) Emit(e Event) error {
	if r.json {
		return json.NewEncoder(r.out).Encode(e)
	}

	line := Text(e)
	if e.Type == TypeFound && r.Verbose {
		line = fmt.Sprintf("%s=%s", e.SafeName, e.UUID)
	}
	if line == "" {
		logging.Debug("%s: %s %s", e.App, e.Type, e.Message)
		return nil
	}
	_, err := fmt.Fprintln(r.out, line)
	return err
}

// Text returns the progress line for e, or "" for silent events
func Text(e Event) string {
	switch e.Type {
	case TypeAdded:
		return fmt.Sprintf("Adding %s with uuid:%s to %s", e.ClassName, e.UUID, e.File)
	case TypePlanned:
		return fmt.Sprintf("Would add %s with uuid:%s to %s", e.ClassName, e.UUID, e.File)
	case TypeUnsupported:
		if e.Code == CodeAppStore {
			return fmt.Sprintf("%s is not supported via app store", e.App)
		}
		return fmt.Sprintf("%s is not supported", e.App)
	case TypeError:
		return fmt.Sprintf("%s: %s", e.App, e.Message)
	default:
		return ""
	}
}

// RedirectLine returns the redirect directive for id
func RedirectLine(base string, id uuid.UUID) string {
	return fmt.Sprintf(`<permanent-redirect tal:omit-tag target="%s/%s" />`, strings.TrimRight(base, "/"), id)
}

// Redirects writes one directive per id, in order. Text mode separates the
// block from the progress lines with a blank line.
func (r *Reporter) Redirects(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if !r.json {
		if _, err := fmt.Fprintln(r.out); err != nil {
			return err
		}
	}
	for _, id := range ids {
		line := RedirectLine(r.redirectBase, id)
		if r.json {
			if err := r.Emit(Event{Type: TypeRedirect, UUID: id.String(), Message: line}); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}
