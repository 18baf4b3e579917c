package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing dataset or registration.
	ErrNotFound = errors.New("dataset not found")
	// ErrAlreadyRegistered signals a duplicate dataset registration.
	ErrAlreadyRegistered = errors.New("dataset already registered")
	// ErrMissingSchema signals a registration without a JSON schema.
	ErrMissingSchema = errors.New("json schema missing")
	// ErrTemplateInvalid signals a registration template that failed validation.
	ErrTemplateInvalid = errors.New("template invalid")
	// ErrValidation signals a document that failed schema validation.
	ErrValidation = errors.New("schema validation failed")
	// ErrMissingID signals a document without a caller or payload id.
	ErrMissingID = errors.New("item id missing")
	// ErrMalformedInput signals an unparsable JSON payload.
	ErrMalformedInput = errors.New("malformed input")
	// ErrWriteFailed signals a backend write failure.
	ErrWriteFailed = errors.New("write failed")
	// ErrItemNotFound signals a missing item within a dataset.
	ErrItemNotFound = errors.New("item not found")
)

// Error codes reported on the API surface.
const (
	CodeNotFound          = 404
	CodeAlreadyRegistered = 409
	CodeMissingSchema     = 461
	CodeTemplateInvalid   = 462
	CodeValidation        = 463
	CodeMissingID         = 464
	CodeMalformedInput    = 465
	CodeWriteFailed       = 466
)

// Error is the structured failure every mutating dataset operation returns:
// the dataset it concerns, a stable numeric code, a human description and
// optional backend/validator detail. It unwraps to one of the sentinels
// above so callers can branch with errors.Is.
type Error struct {
	DatasetID   string
	Code        int
	Description string
	Detail      string

	kind error
}

// NewError builds a structured dataset error around a sentinel kind.
func NewError(datasetID string, kind error, detail string) *Error {
	return &Error{
		DatasetID:   datasetID,
		Code:        codeFor(kind),
		Description: kind.Error(),
		Detail:      detail,
		kind:        kind,
	}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("dataset %s: %s", e.DatasetID, e.Description)
	}
	return fmt.Sprintf("dataset %s: %s: %s", e.DatasetID, e.Description, e.Detail)
}

func (e *Error) Unwrap() error { return e.kind }

func codeFor(kind error) int {
	switch {
	case errors.Is(kind, ErrNotFound), errors.Is(kind, ErrItemNotFound):
		return CodeNotFound
	case errors.Is(kind, ErrAlreadyRegistered):
		return CodeAlreadyRegistered
	case errors.Is(kind, ErrMissingSchema):
		return CodeMissingSchema
	case errors.Is(kind, ErrTemplateInvalid):
		return CodeTemplateInvalid
	case errors.Is(kind, ErrValidation):
		return CodeValidation
	case errors.Is(kind, ErrMissingID):
		return CodeMissingID
	case errors.Is(kind, ErrMalformedInput):
		return CodeMalformedInput
	default:
		return CodeWriteFailed
	}
}
