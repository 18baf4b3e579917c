package validate

import (
	"html/template"
	"strings"
)

// TemplateValidator checks registration display templates for syntax errors.
// Templates render dataset items into result and detail views, so they are
// parsed as HTML templates.
type TemplateValidator struct{}

// NewTemplateValidator creates a template validator.
func NewTemplateValidator() *TemplateValidator {
	return &TemplateValidator{}
}

// Validate parses the template body and returns all error messages found.
// An empty slice means the template is valid.
func (v *TemplateValidator) Validate(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	if _, err := template.New("dataset").Parse(body); err != nil {
		return []string{err.Error()}
	}
	return nil
}
