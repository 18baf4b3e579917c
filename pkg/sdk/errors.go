package datasets

import (
	"errors"

	"github.com/statwatch/datasets/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrAlreadyRegistered = domain.ErrAlreadyRegistered
	ErrMissingSchema     = domain.ErrMissingSchema
	ErrTemplateInvalid   = domain.ErrTemplateInvalid
	ErrValidation        = domain.ErrValidation
	ErrMissingID         = domain.ErrMissingID
	ErrMalformedInput    = domain.ErrMalformedInput
	ErrWriteFailed       = domain.ErrWriteFailed
	ErrItemNotFound      = domain.ErrItemNotFound
)

// ErrorDetail is the structured failure attached to rejected operations.
type ErrorDetail struct {
	DatasetID   string
	Code        int
	Description string
	Detail      string
}

// Detail extracts the structured failure from an error returned by the
// client. ok is false for plain errors without dataset context.
func Detail(err error) (ErrorDetail, bool) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return ErrorDetail{}, false
	}
	return ErrorDetail{
		DatasetID:   de.DatasetID,
		Code:        de.Code,
		Description: de.Description,
		Detail:      de.Detail,
	}, true
}
