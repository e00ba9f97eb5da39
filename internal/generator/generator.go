// Package generator drives the per-application pipeline: locate the manifest,
// derive the check identity, fall back to the App Store when there is no feed,
// and render the check file.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"appcheckgen/internal/appstore"
	"appcheckgen/internal/catalog"
	"appcheckgen/internal/logging"
	"appcheckgen/internal/manifest"
	"appcheckgen/internal/naming"
	"appcheckgen/internal/report"
	"appcheckgen/internal/telemetry"
	"appcheckgen/internal/templates"
)

// Outcome is the terminal state of one catalog entry
type Outcome int

const (
	NotFound Outcome = iota
	AlreadyGenerated
	Generated
	Planned
	Unsupported
	LookupFailed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "not_found"
	case AlreadyGenerated:
		return "already_generated"
	case Generated:
		return "generated"
	case Planned:
		return "planned"
	case Unsupported:
		return "unsupported"
	case LookupFailed:
		return "lookup_failed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrLookupFailed stands in when a resolver reports a network error without a cause
var ErrLookupFailed = errors.New("App Store lookup failed")

// Locator finds the manifest of an installed application
type Locator interface {
	Locate(name string) (string, bool)
}

// Resolver decides App Store eligibility for apps without a feed
type Resolver interface {
	Resolve(ctx context.Context, bundleID string) appstore.Result
}

// Reporter receives progress events and the final redirect block
type Reporter interface {
	Emit(e report.Event) error
	Redirects(ids []uuid.UUID) error
}

// Result records what happened to one catalog entry
type Result struct {
	Entry     catalog.Entry
	Outcome   Outcome
	SafeName  string
	ClassName string
	ID        uuid.UUID
	Path      string
	Reason    string
	Err       error
}

// Summary is the outcome of a run. IDs holds the check id of every installed
// app in catalog order, generated in this run or not.
type Summary struct {
	Results []Result
	IDs     []uuid.UUID
}

// Count returns how many results ended in outcome
func (s *Summary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// Generator runs the pipeline over a catalog. A nil Resolver disables the
// App Store fallback; apps without a feed are then skipped.
type Generator struct {
	Catalog   []catalog.Entry
	Locator   Locator
	Manifests manifest.Reader
	Resolver  Resolver
	Renderer  *templates.Renderer
	Reporter  Reporter

	OutputDir string
	Extension string

	// DryRun reports what would be written without touching the output dir
	DryRun bool

	// StrictLookup makes lookup network errors fail the run
	StrictLookup bool
}

// Run processes every catalog entry in order, then prints the redirects.
// The returned error joins every failed entry, plus lookup failures when
// StrictLookup is set; skipped entries are never errors.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var errs []error

	for _, entry := range g.Catalog {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result := g.process(ctx, entry, summary)
		summary.Results = append(summary.Results, result)

		switch result.Outcome {
		case Failed:
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, result.Err))
		case LookupFailed:
			if g.StrictLookup {
				errs = append(errs, fmt.Errorf("%s: lookup failed: %w", entry.Name, result.Err))
			}
		}
	}

	if g.Reporter != nil {
		if err := g.Reporter.Redirects(summary.IDs); err != nil {
			errs = append(errs, fmt.Errorf("failed to print redirects: %w", err))
		}
	}

	return summary, errors.Join(errs...)
}

func (g *Generator) process(ctx context.Context, entry catalog.Entry, summary *Summary) Result {
	ctx, span := telemetry.StartSpan(ctx, "generate.app",
		trace.WithAttributes(attribute.String("app.name", entry.Name)))
	defer span.End()

	result := g.evaluate(ctx, entry, summary)

	span.SetAttributes(attribute.String("app.outcome", result.Outcome.String()))
	if result.Err != nil {
		span.RecordError(result.Err)
		if result.Outcome == Failed {
			span.SetStatus(codes.Error, result.Err.Error())
		}
	}
	return result
}

func (g *Generator) evaluate(ctx context.Context, entry catalog.Entry, summary *Summary) Result {
	result := Result{Entry: entry}

	manifestPath, ok := g.Locator.Locate(entry.Name)
	if !ok {
		result.Outcome = NotFound
		g.emit(report.Event{Type: report.TypeNotFound, App: entry.Name})
		return result
	}

	derived := naming.Derive(entry.Name)
	result.SafeName = derived.SafeName
	result.ClassName = derived.ClassName
	result.ID = derived.ID
	result.Path = filepath.Join(g.OutputDir, derived.FileName(g.Extension))

	summary.IDs = append(summary.IDs, derived.ID)
	g.emit(g.event(report.TypeFound, entry, result))

	if _, err := os.Stat(result.Path); err == nil {
		result.Outcome = AlreadyGenerated
		g.emit(g.event(report.TypeExists, entry, result))
		return result
	}

	fields, err := manifest.ReadFields(ctx, g.Manifests, manifestPath)
	if err != nil {
		return g.fail(entry, result, err)
	}
	applyOverrides(&fields, entry)

	if fields.FeedURL == "" && !entry.SkipLookup {
		if g.Resolver == nil {
			result.Outcome = Unsupported
			result.Reason = "lookup disabled"
			e := g.event(report.TypeUnsupported, entry, result)
			e.Message = result.Reason
			g.emit(e)
			return result
		}

		lookup := g.Resolver.Resolve(ctx, fields.BundleID)
		switch lookup.Outcome {
		case appstore.NotEligible:
			result.Outcome = Unsupported
			result.Reason = lookup.Reason
			e := g.event(report.TypeUnsupported, entry, result)
			e.Code = report.CodeAppStore
			e.Message = lookup.Reason
			g.emit(e)
			return result
		case appstore.NetworkError:
			result.Outcome = LookupFailed
			result.Err = lookup.Err
			if result.Err == nil {
				result.Err = ErrLookupFailed
			}
			logging.Warning("App Store lookup for %s (%s) failed: %v", entry.Name, fields.BundleID, result.Err)
			e := g.event(report.TypeUnsupported, entry, result)
			e.Code = report.CodeLookupFailed
			e.Message = result.Err.Error()
			g.emit(e)
			return result
		case appstore.Found:
			if lookup.App != nil {
				logging.Debug("%s is listed on the App Store as %s", entry.Name, lookup.App.TrackName)
			}
		}
	}

	values := templates.Values{
		SafeName:  derived.SafeName,
		ClassName: derived.ClassName,
		App:       entry.Name,
		UUID:      derived.ID.String(),
		Bundle:    fields.BundleID,
		AppName:   fields.BundleName,
		FeedURL:   fields.FeedURL,
	}

	if g.DryRun {
		if err := g.Renderer.Render(io.Discard, values); err != nil {
			return g.fail(entry, result, err)
		}
		result.Outcome = Planned
		g.emit(g.event(report.TypePlanned, entry, result))
		return result
	}

	if err := g.Renderer.WriteFile(result.Path, values); err != nil {
		if errors.Is(err, fs.ErrExist) {
			result.Outcome = AlreadyGenerated
			g.emit(g.event(report.TypeExists, entry, result))
			return result
		}
		return g.fail(entry, result, err)
	}

	result.Outcome = Generated
	g.emit(g.event(report.TypeAdded, entry, result))
	return result
}

func applyOverrides(fields *manifest.Fields, entry catalog.Entry) {
	if entry.FeedURL != "" {
		fields.FeedURL = entry.FeedURL
	}
	if entry.BundleID != "" {
		fields.BundleID = entry.BundleID
	}
	if entry.AppName != "" {
		fields.BundleName = entry.AppName
	}
}

func (g *Generator) fail(entry catalog.Entry, result Result, err error) Result {
	result.Outcome = Failed
	result.Err = err
	logging.Error("Failed to generate check for %s: %v", entry.Name, err)
	e := g.event(report.TypeError, entry, result)
	e.Message = err.Error()
	g.emit(e)
	return result
}

func (g *Generator) event(eventType string, entry catalog.Entry, result Result) report.Event {
	return report.Event{
		Type:      eventType,
		App:       entry.Name,
		SafeName:  result.SafeName,
		ClassName: result.ClassName,
		UUID:      result.ID.String(),
		File:      filepath.Base(result.Path),
	}
}

func (g *Generator) emit(e report.Event) {
	if g.Reporter == nil {
		return
	}
	if err := g.Reporter.Emit(e); err != nil {
		logging.Warning("Failed to report %s event for %s: %v", e.Type, e.App, err)
	}
}
