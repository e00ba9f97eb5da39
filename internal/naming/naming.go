// Package naming derives the stable names and identifiers used for generated checks.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	// ClassPrefix and ClassSuffix wrap the safe name to form the generated class name.
	ClassPrefix = "App"
	ClassSuffix = "Check"

	// DefaultExtension is the file extension of generated checks
	DefaultExtension = ".swift"
)

// Namespace is the UUIDv5 namespace check ids are derived in.
var Namespace = uuid.NameSpaceURL

// SafeName strips whitespace and the characters '.', '-' and '_' from a display name.
// For example: "1Password 7" -> "1Password7", "zoom.us" -> "zoomus"
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '.', '-', '_':
			return -1
		}
		return r
	}, name)
}

// ClassName returns the generated class name for a safe name
// Pattern: App<safe>Check
func ClassName(safeName string) string {
	return fmt.Sprintf("%s%s%s", ClassPrefix, safeName, ClassSuffix)
}

// FileName returns the output file name for a safe name. The extension gains a
// leading dot if it does not carry one.
func FileName(safeName, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return safeName + ext
}

// CheckID returns the deterministic name-based UUID (version 5, URL namespace)
// for a safe name. Same input, same id, on every machine.
func CheckID(safeName string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(safeName))
}

// Derived bundles every name derived from one display name.
type Derived struct {
	App       string
	SafeName  string
	ClassName string
	ID        uuid.UUID
}

// Derive computes all derived names for a display name.
func Derive(app string) Derived {
	safe := SafeName(app)
	return Derived{
		App:       app,
		SafeName:  safe,
		ClassName: ClassName(safe),
		ID:        CheckID(safe),
	}
}

// FileName returns the output file name for the derived safe name.
func (d Derived) FileName(ext string) string {
	return FileName(d.SafeName, ext)
}
