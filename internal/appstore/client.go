// Package appstore asks the App Store lookup service whether an application is
// distributed for the desktop.
package appstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"appcheckgen/internal/cache"
	"appcheckgen/internal/logging"
)

// Defaults for the public lookup endpoint
const (
	DefaultBaseURL       = "https://itunes.apple.com/lookup"
	DefaultCountry       = "us"
	DefaultEntity        = "macSoftware"
	DefaultDesktopMarker = "MacDesktop-MacDesktop"
	DefaultTimeout       = 30 * time.Second

	userAgent       = "appcheck-gen"
	maxResponseSize = 4 << 20
)

// Client queries the lookup service by bundle identifier.
type Client struct {
	BaseURL       string
	Country       string
	Entity        string
	DesktopMarker string
	UserAgent     string
	HTTPClient    *http.Client

	results *cache.Cache[Result]
}

// NewClient creates a client with the public defaults. A zero timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:       baseURL,
		Country:       DefaultCountry,
		Entity:        DefaultEntity,
		DesktopMarker: DefaultDesktopMarker,
		UserAgent:     userAgent,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		results: cache.New[Result](0),
	}
}

// LookupURL builds the request URL for bundleID
func (c *Client) LookupURL(bundleID string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid lookup url %q: %w", c.BaseURL, err)
	}

	q := u.Query()
	q.Set("bundleId", bundleID)
	q.Set("country", valueOr(c.Country, DefaultCountry))
	q.Set("entity", valueOr(c.Entity, DefaultEntity))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Resolve looks up bundleID. Definitive answers are remembered for the life of
// the client; network errors are not.
func (c *Client) Resolve(ctx context.Context, bundleID string) Result {
	if bundleID == "" {
		return notEligible("no bundle identifier")
	}

	if c.results != nil {
		if res, ok := c.results.Get(bundleID); ok {
			return res
		}
	}

	res := c.lookup(ctx, bundleID)
	if res.Outcome != NetworkError && c.results != nil {
		c.results.Set(bundleID, res)
	}
	return res
}

func (c *Client) lookup(ctx context.Context, bundleID string) Result {
	lookupURL, err := c.LookupURL(bundleID)
	if err != nil {
		return networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return networkError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", valueOr(c.UserAgent, userAgent))
	req.Header.Set("Accept", "application/json")

	logging.Debug("Requesting %s", lookupURL)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return networkError(fmt.Errorf("lookup request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return networkError(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return networkError(fmt.Errorf("failed to read lookup response: %w", err))
	}

	return c.classify(body)
}

// ErrMalformedResponse reports a lookup payload that could not be interpreted
var ErrMalformedResponse = errors.New("malformed lookup response")

func (c *Client) classify(body []byte) Result {
	if !gjson.ValidBytes(body) {
		return networkError(fmt.Errorf("%w: invalid JSON", ErrMalformedResponse))
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return networkError(fmt.Errorf("%w: missing results", ErrMalformedResponse))
	}

	first := results.Get("0")
	if !first.Exists() {
		return notEligible("no App Store listing")
	}
	if !first.IsObject() {
		return networkError(fmt.Errorf("%w: result is not an object", ErrMalformedResponse))
	}

	app := &App{
		TrackID:   first.Get("trackId").Int(),
		TrackName: first.Get("trackName").String(),
		BundleID:  first.Get("bundleId").String(),
		Version:   first.Get("version").String(),
	}
	for _, device := range first.Get("supportedDevices").Array() {
		app.SupportedDevices = append(app.SupportedDevices, device.String())
	}

	// Catalyst and iOS-only listings carry a device list without the desktop marker
	marker := valueOr(c.DesktopMarker, DefaultDesktopMarker)
	if len(app.SupportedDevices) > 0 && !slices.Contains(app.SupportedDevices, marker) {
		return Result{Outcome: NotEligible, App: app, Reason: "not available for the desktop"}
	}

	return found(app)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
