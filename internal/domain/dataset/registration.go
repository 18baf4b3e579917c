// Package dataset holds the registration aggregate: the persisted
// declaration of a dataset (schema, display templates, ownership).
package dataset

import (
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/statwatch/datasets/internal/domain/person"
)

// Template is a display template body attached to a registration.
type Template struct {
	Body string `json:"body,omitempty"`
}

// IsEmpty reports whether the template carries no body to validate.
func (t *Template) IsEmpty() bool {
	return t == nil || strings.TrimSpace(t.Body) == ""
}

// Registration declares a dataset: its identity, governing JSON schema and
// optional result/detail templates. Created once at provisioning time and
// read-mostly afterward.
type Registration struct {
	DatasetID            string          `json:"datasetId"`
	Name                 string          `json:"name"`
	CreatedBy            string          `json:"createdBy"`
	JSONSchema           json.RawMessage `json:"jsonSchema,omitempty"`
	SearchResultTemplate *Template       `json:"searchResultTemplate,omitempty"`
	DetailTemplate       *Template       `json:"detailTemplate,omitempty"`
}

// HasSchema reports whether the registration declares a JSON schema.
func (r *Registration) HasSchema() bool {
	return len(r.JSONSchema) > 0 && string(r.JSONSchema) != "null"
}

// NormalizeShortName canonicalizes the dataset id: lowercase ASCII with
// word separators collapsed to single dashes. The id is immutable once a
// Dataset handle is constructed from it.
func (r *Registration) NormalizeShortName() {
	r.DatasetID = NormalizeID(r.DatasetID)
}

// NormalizeID lowercases an id and strips diacritics and punctuation so the
// same dataset name always maps to the same index name.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = person.ASCIIFold(id)

	var b strings.Builder
	b.Grow(len(id))
	lastDash := false
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteRune(c)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValidEmail reports whether addr is a syntactically valid mail address.
func IsValidEmail(addr string) bool {
	if strings.TrimSpace(addr) == "" {
		return false
	}
	a, err := mail.ParseAddress(addr)
	return err == nil && a.Address == addr
}
