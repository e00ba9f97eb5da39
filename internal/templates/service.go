// Package templates renders generated check sources from a text template.
package templates

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"appcheckgen/internal/embeds"
)

// Values are the named placeholders available to a check template
type Values struct {
	SafeName  string
	ClassName string
	App       string
	UUID      string
	Bundle    string
	AppName   string
	FeedURL   string
}

// SampleValues returns placeholder values used to validate templates
func SampleValues() Values {
	return Values{
		SafeName:  "Firefox",
		ClassName: "AppFirefoxCheck",
		App:       "Firefox",
		UUID:      "768a574c-75a2-536d-8785-ef9512981184",
		Bundle:    "org.mozilla.firefox",
		AppName:   "Firefox",
		FeedURL:   "https://example.com/appcast.xml",
	}
}

var funcs = template.FuncMap{
	"swift": swiftString,
}

// swiftString quotes s as a Swift string literal
func swiftString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// Renderer renders check sources
type Renderer struct {
	name string
	tmpl *template.Template
}

// New parses text as a check template. Unknown placeholders are an error at
// render time.
func New(name, text string) (*Renderer, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return &Renderer{name: name, tmpl: tmpl}, nil
}

// Default returns the renderer for the embedded template
func Default() (*Renderer, error) {
	text, err := embeds.DefaultTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template: %w", err)
	}
	return New(embeds.DefaultTemplateName, text)
}

// Load reads a template file. An empty path returns the embedded template.
func Load(path string) (*Renderer, error) {
	if path == "" {
		return Default()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return New(filepath.Base(path), string(content))
}

// Name returns the template name
func (r *Renderer) Name() string {
	return r.name
}

// Render writes the rendered template to w
func (r *Renderer) Render(w io.Writer, v Values) error {
	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render %s: %w", r.name, err)
	}
	return nil
}

// WriteFile renders v into a new file at path. An existing file is never
// touched: the returned error then matches fs.ErrExist.
func (r *Renderer) WriteFile(path string, v Values) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, v); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Check parses the template at path (empty: embedded) and renders it against
// SampleValues.
func Check(path string) error {
	r, err := Load(path)
	if err != nil {
		return err
	}
	return r.Render(io.Discard, SampleValues())
}
