package manifest

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"appcheckgen/internal/logging"
)

// PlistBuddy reads fields by running PlistBuddy once per field.
type PlistBuddy struct {
	Path string
}

// NewPlistBuddy creates a PlistBuddy reader for the binary at path
func NewPlistBuddy(path string) *PlistBuddy {
	return &PlistBuddy{Path: path}
}

// Field runs `PlistBuddy -c Print:<key> <path>`. PlistBuddy exits non-zero when
// the entry does not exist, which is reported as an empty value.
func (p *PlistBuddy) Field(ctx context.Context, path, key string) (string, error) {
	cmd := exec.CommandContext(ctx, p.Path, "-c", "Print:"+key, path)
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logging.Debug("%s: %s not present (%s)", path, key, strings.TrimSpace(string(exitErr.Stderr)))
			return "", nil
		}
		return "", fmt.Errorf("failed to run %s: %w", p.Path, err)
	}
	return strings.Trim(string(out), "\n"), nil
}
