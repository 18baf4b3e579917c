// Package validate provides the schema and template validators the dataset
// pipeline consumes as black boxes.
package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator validates JSON documents against declared JSON schemas.
type SchemaValidator struct{}

// NewSchemaValidator creates a schema validator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate checks a document against a schema. It returns ok=false with the
// validator's error descriptions when the document violates the schema, and
// a non-nil error only when the schema or document cannot be evaluated at all.
func (v *SchemaValidator) Validate(doc, schema []byte) (bool, []string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate schema: %w", err)
	}
	if result.Valid() {
		return true, nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, re.String())
	}
	return false, errs, nil
}
