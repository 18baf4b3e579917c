package datasets

import (
	"context"
	"time"

	"github.com/statwatch/datasets/internal/domain"
	"github.com/statwatch/datasets/internal/domain/mapping"
	datasetuc "github.com/statwatch/datasets/internal/usecase/dataset"
)

// Dataset is a handle to one registered dataset.
type Dataset struct {
	ds  datasetAPI
	obs *observer
}

// ID returns the normalized dataset identifier.
func (d *Dataset) ID() string { return d.ds.ID() }

// Info returns the dataset registration.
func (d *Dataset) Info(ctx context.Context) (reg Registration, err error) {
	start := time.Now()
	defer func() { d.obs.observe("info", start, err) }()

	dom, err := d.ds.Registration(ctx)
	if err != nil {
		return Registration{}, err
	}
	return registrationFromDomain(dom), nil
}

// Upsert writes one item through the full ingestion pipeline: schema
// validation, provenance stamping, marker resolution and OCR dispatch.
// Returns the final item id assigned by the backend.
func (d *Dataset) Upsert(ctx context.Context, payload []byte, opts UpsertOptions) (id string, err error) {
	start := time.Now()
	defer func() { d.obs.observe("upsert", start, err) }()

	createdBy := opts.CreatedBy
	if createdBy == "" {
		createdBy = "sdk"
	}
	return d.ds.AddData(ctx, payload, opts.ID, createdBy, datasetuc.AddOptions{
		SkipValidation: opts.SkipValidation,
		SkipOCR:        opts.SkipOCR,
	})
}

// Item returns the stored JSON for an item. Fails with ErrItemNotFound
// when the id is absent.
func (d *Dataset) Item(ctx context.Context, id string) (raw []byte, err error) {
	start := time.Now()
	defer func() { d.obs.observe("get_item", start, err) }()

	raw, found, err := d.ds.GetData(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewError(d.ID(), domain.ErrItemNotFound, id)
	}
	return raw, nil
}

// Exists reports whether an item is present without fetching its body.
func (d *Dataset) Exists(ctx context.Context, id string) (ok bool, err error) {
	start := time.Now()
	defer func() { d.obs.observe("exists", start, err) }()

	return d.ds.ItemExists(ctx, id)
}

// Delete removes an item. found is false when nothing was stored under
// the id.
func (d *Dataset) Delete(ctx context.Context, id string) (found bool, err error) {
	start := time.Now()
	defer func() { d.obs.observe("delete", start, err) }()

	return d.ds.DeleteData(ctx, id)
}

// MappingPaths lists indexed field paths matching the filter, in dotted
// notation.
func (d *Dataset) MappingPaths(ctx context.Context, f MappingFilter) (paths []string, err error) {
	start := time.Now()
	defer func() { d.obs.observe("mapping", start, err) }()

	return d.ds.MappingPaths(ctx, mapping.Filter{
		Kind: mapping.Kind(f.Kind),
		Name: f.Name,
	})
}

// TextPaths lists the full-text field paths of the dataset.
func (d *Dataset) TextPaths(ctx context.Context) (paths []string, err error) {
	start := time.Now()
	defer func() { d.obs.observe("text_paths", start, err) }()

	return d.ds.TextMappingPaths(ctx)
}

// SchemaPaths lists every path in the JSON schema whose property name
// matches, descending into nested objects and array items.
func (d *Dataset) SchemaPaths(ctx context.Context, name string) (paths []string, err error) {
	start := time.Now()
	defer func() { d.obs.observe("schema_paths", start, err) }()

	return d.ds.SchemaPropertyPaths(ctx, name)
}

// NotifyAuthor mails a template problem report to the dataset author.
// Without SMTP configured the message is discarded. Delivery failures are
// swallowed unless the client was built WithStrictNotify.
func (d *Dataset) NotifyAuthor(ctx context.Context, pageURL, message string) (err error) {
	start := time.Now()
	defer func() { d.obs.observe("notify_author", start, err) }()

	return d.ds.SendErrorMsgToAuthor(ctx, pageURL, message)
}
