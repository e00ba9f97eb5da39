package embeds

import (
	"embed"
)

// DefaultTemplateName is the embedded check template
const DefaultTemplateName = "AppUpdateCheck.swift.tmpl"

//go:embed templates
var content embed.FS

// DefaultTemplate returns the text of the embedded check template
func DefaultTemplate() (string, error) {
	data, err := content.ReadFile("templates/" + DefaultTemplateName)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
