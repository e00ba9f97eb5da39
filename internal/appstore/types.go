package appstore

import "fmt"

// Outcome classifies a lookup
type Outcome int

const (
	// Found means the app is listed and runs on the desktop.
	Found Outcome = iota
	// NotEligible means the service answered and the app is not a desktop app.
	NotEligible
	// NetworkError means no usable answer was obtained (transport, status, payload).
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotEligible:
		return "not_eligible"
	case NetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// App is the part of a lookup record the generator cares about
type App struct {
	TrackID          int64    `json:"trackId"`
	TrackName        string   `json:"trackName"`
	BundleID         string   `json:"bundleId"`
	Version          string   `json:"version"`
	SupportedDevices []string `json:"supportedDevices,omitempty"`
}

// Result is the tagged outcome of a lookup. App is set for Found, Reason for
// NotEligible and Err for NetworkError.
type Result struct {
	Outcome Outcome
	App     *App
	Reason  string
	Err     error
}

func found(app *App) Result {
	return Result{Outcome: Found, App: app}
}

func notEligible(reason string) Result {
	return Result{Outcome: NotEligible, Reason: reason}
}

func networkError(err error) Result {
	return Result{Outcome: NetworkError, Err: err}
}
