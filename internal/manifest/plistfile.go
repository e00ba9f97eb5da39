package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"howett.net/plist"

	"appcheckgen/internal/cache"
)

// PlistFile decodes manifests natively. Each file is parsed once and kept for
// the life of the reader, so reading several fields costs one decode.
type PlistFile struct {
	decoded *cache.Cache[map[string]interface{}]
}

// NewPlistFile creates a native plist reader
func NewPlistFile() *PlistFile {
	return &PlistFile{decoded: cache.New[map[string]interface{}](0)}
}

// Field returns the top-level value for key. Non-string values are formatted
// with fmt.Sprint.
func (p *PlistFile) Field(ctx context.Context, path, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dict, err := p.decoded.GetOrLoad(path, func() (map[string]interface{}, error) {
		return decodeFile(path)
	})
	if err != nil {
		return "", err
	}

	value, ok := dict[key]
	if !ok || value == nil {
		return "", nil
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return strings.TrimSpace(fmt.Sprint(value)), nil
}

func decodeFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	dict := make(map[string]interface{})
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return dict, nil
}
