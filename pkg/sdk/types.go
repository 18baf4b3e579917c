package datasets

import (
	"encoding/json"

	domds "github.com/statwatch/datasets/internal/domain/dataset"
)

// Template is a display template body attached to a registration.
type Template struct {
	Body string
}

// Registration declares a dataset: identity, governing JSON schema and
// optional display templates.
type Registration struct {
	// ID is the short name of the dataset. It is normalized to lowercase
	// ASCII with dashes on registration.
	ID string
	// Name is the human-readable dataset title.
	Name string
	// CreatedBy is the author contact, an email address when notification
	// mail should reach them.
	CreatedBy string
	// JSONSchema governs every item written into the dataset. Required.
	JSONSchema json.RawMessage
	// SearchResultTemplate renders an item in result listings. Optional.
	SearchResultTemplate *Template
	// DetailTemplate renders an item detail page. Optional.
	DetailTemplate *Template
}

// MappingFilter narrows mapping path listings. Zero value matches all
// indexed fields.
type MappingFilter struct {
	// Kind filters by field kind: "text", "keyword", "date", "number" or
	// "boolean".
	Kind string
	// Name filters by the leaf field name.
	Name string
}

// UpsertOptions controls a single item write.
type UpsertOptions struct {
	// ID identifies the item. When empty the payload must carry an Id
	// property.
	ID string
	// CreatedBy is stamped into the item provenance. Defaults to "sdk".
	CreatedBy string
	// SkipValidation bypasses JSON schema validation.
	SkipValidation bool
	// SkipOCR suppresses text-extraction task enqueueing for document
	// markers.
	SkipOCR bool
}

func (r Registration) toDomain() *domds.Registration {
	return &domds.Registration{
		DatasetID:            r.ID,
		Name:                 r.Name,
		CreatedBy:            r.CreatedBy,
		JSONSchema:           r.JSONSchema,
		SearchResultTemplate: templateToDomain(r.SearchResultTemplate),
		DetailTemplate:       templateToDomain(r.DetailTemplate),
	}
}

func registrationFromDomain(reg *domds.Registration) Registration {
	return Registration{
		ID:                   reg.DatasetID,
		Name:                 reg.Name,
		CreatedBy:            reg.CreatedBy,
		JSONSchema:           reg.JSONSchema,
		SearchResultTemplate: templateFromDomain(reg.SearchResultTemplate),
		DetailTemplate:       templateFromDomain(reg.DetailTemplate),
	}
}

func templateToDomain(t *Template) *domds.Template {
	if t == nil {
		return nil
	}
	return &domds.Template{Body: t.Body}
}

func templateFromDomain(t *domds.Template) *Template {
	if t == nil {
		return nil
	}
	return &Template{Body: t.Body}
}
