package dataset

import (
	"context"

	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/document"
	"github.com/statwatch/datasets/internal/domain/mapping"
)

// IndexBackend is the search-index collaborator a dataset writes to and
// introspects. One index per dataset, named by the dataset id.
type IndexBackend interface {
	Exists(ctx context.Context, index string) (bool, error)
	Create(ctx context.Context, index string, fields []mapping.Field) error
	Mapping(ctx context.Context, index string) ([]mapping.Field, error)
	Get(ctx context.Context, index, id string) ([]byte, bool, error)
	// Upsert writes a document under id, replacing any previous version,
	// and returns the storage-assigned final id. The error carries backend
	// detail when the write is rejected.
	Upsert(ctx context.Context, index, id string, doc []byte) (string, error)
	Delete(ctx context.Context, index, id string) (bool, error)
	ItemExists(ctx context.Context, index, id string) (bool, error)
}

// SchemaValidator validates a document against a declared JSON schema.
// ok=false comes with the validator's error messages; a non-nil error means
// the schema could not be evaluated at all.
type SchemaValidator interface {
	Validate(doc, schema []byte) (ok bool, errs []string, err error)
}

// TemplateValidator checks a display template body, returning all error
// messages found (empty means valid).
type TemplateValidator interface {
	Validate(body string) []string
}

// RegistrationStore persists dataset registrations. Get returns (nil, nil)
// when no registration exists for the id.
type RegistrationStore interface {
	Add(ctx context.Context, reg *domds.Registration) error
	Get(ctx context.Context, datasetID string) (*domds.Registration, error)
}

// Resolver links person markers to canonical identities. Implementations
// must swallow their own failures: resolution never aborts an ingestion.
type Resolver interface {
	ResolveMarker(ctx context.Context, marker document.Object)
}

// OCR task parameters.
const (
	OCRTaskDataset      = "dataset"
	OCRPriorityStandard = "standard"
)

// OCRQueue accepts deferred text-extraction tasks.
type OCRQueue interface {
	Enqueue(ctx context.Context, taskType, documentID, datasetID, priority string) error
}

// MailNotifier delivers mail to dataset authors.
type MailNotifier interface {
	Send(to, subject, body string) error
}
