package dataset

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/domain"
	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/document"
	"github.com/statwatch/datasets/internal/domain/mapping"
	"github.com/statwatch/datasets/internal/metrics"
)

// Dataset is a handle to one named dataset. Registration and mapping
// snapshots load lazily, at most once per handle, and stay fixed for the
// handle's lifetime until Refresh is called.
type Dataset struct {
	id  string
	svc *Service

	mu           sync.Mutex
	reg          *domds.Registration
	fields       []mapping.Field
	fieldsLoaded bool
}

// ID returns the dataset identifier.
func (d *Dataset) ID() string { return d.id }

// Registration returns the dataset's registration record, loading it on
// first access.
func (d *Dataset) Registration(ctx context.Context) (*domds.Registration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reg != nil {
		return d.reg, nil
	}

	reg, err := d.svc.regs.Get(ctx, d.id)
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	if reg == nil {
		return nil, domain.NewError(d.id, domain.ErrNotFound, "registration missing")
	}
	d.reg = reg
	return reg, nil
}

// Refresh drops the cached registration and mapping snapshots so the next
// access reloads them. Snapshots never refresh implicitly.
func (d *Dataset) Refresh() {
	d.mu.Lock()
	d.reg = nil
	d.fields = nil
	d.fieldsLoaded = false
	d.mu.Unlock()
}

// AddOptions control a single AddData call. The zero value validates
// against the declared schema and dispatches OCR tasks.
type AddOptions struct {
	SkipValidation bool
	SkipOCR        bool
}

// AddData runs the ingestion pipeline for one document: parse, validate,
// stamp, enrich person markers, upsert into the backing index and dispatch
// OCR tasks for document markers. It returns the storage-assigned final id.
//
// The write is an upsert: a second call with the same id replaces the first
// document. OCR dispatch and entity enrichment are best-effort; their
// failures never fail the call.
func (d *Dataset) AddData(ctx context.Context, payload []byte, id, createdBy string, opts AddOptions) (string, error) {
	obj, err := document.Parse(payload)
	if err != nil {
		return "", domain.NewError(d.id, domain.ErrMalformedInput, err.Error())
	}

	if !opts.SkipValidation {
		if err := d.validateSchema(ctx, payload); err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(id) == "" {
		return "", domain.NewError(d.id, domain.ErrMissingID, "item id argument is empty")
	}
	if !obj.HasID() {
		return "", domain.NewError(d.id, domain.ErrMissingID, "payload carries no Id field")
	}

	obj.Stamp(createdBy, d.svc.now())

	// The registration store's own dataset holds registrations, not civic
	// records; scanning it would analyze the registrations themselves.
	var markers []document.Marker
	if d.id != d.svc.registryDataset {
		markers = obj.Markers()
	}
	for _, m := range markers {
		if m.Type() == document.ProcessPerson {
			d.svc.resolver.ResolveMarker(ctx, m.Object)
		}
	}

	data, err := obj.Marshal()
	if err != nil {
		return "", domain.NewError(d.id, domain.ErrWriteFailed, err.Error())
	}

	finalID, err := d.svc.backend.Upsert(ctx, d.id, id, data)
	if err != nil {
		metrics.DocumentsIngestedTotal.WithLabelValues(d.id, "error").Inc()
		return "", domain.NewError(d.id, domain.ErrWriteFailed, err.Error())
	}
	metrics.DocumentsIngestedTotal.WithLabelValues(d.id, "ok").Inc()

	if !opts.SkipOCR {
		d.dispatchOCR(ctx, markers, finalID)
	}

	return finalID, nil
}

func (d *Dataset) validateSchema(ctx context.Context, payload []byte) error {
	reg, err := d.Registration(ctx)
	if err != nil {
		return err
	}
	if !reg.HasSchema() {
		return nil
	}

	ok, errs, err := d.svc.schemas.Validate(payload, reg.JSONSchema)
	if err != nil {
		return domain.NewError(d.id, domain.ErrValidation, err.Error())
	}
	if ok {
		return nil
	}
	if len(errs) == 0 {
		// Validator reported failure without messages; keep the historical
		// placeholder shape rather than inventing stricter semantics.
		errs = []string{"", ""}
	}
	return domain.NewError(d.id, domain.ErrValidation, strings.Join(errs, ";"))
}

// dispatchOCR enqueues one extraction task when any document marker points
// at an external document that has no extracted text yet. Failures are
// logged, never propagated: the document is already written.
func (d *Dataset) dispatchOCR(ctx context.Context, markers []document.Marker, finalID string) {
	needsOCR := false
	for _, m := range markers {
		if m.Type() != document.ProcessDocument {
			continue
		}
		rawURL, ok := m.Object.String(document.FieldDocumentURL)
		if !ok {
			continue
		}
		if txt, ok := m.Object.String(document.FieldPlainText); ok && txt != "" {
			continue
		}
		if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
			needsOCR = true
		}
	}
	if !needsOCR {
		return
	}

	if err := d.svc.ocr.Enqueue(ctx, OCRTaskDataset, finalID, d.id, OCRPriorityStandard); err != nil {
		d.svc.logger.Warn("ocr enqueue failed",
			zap.String("dataset", d.id), zap.String("item", finalID), zap.Error(err))
		return
	}
	metrics.OCRTasksEnqueuedTotal.WithLabelValues(d.id).Inc()
}

// ItemExists reports whether an item is stored under id.
func (d *Dataset) ItemExists(ctx context.Context, id string) (bool, error) {
	return d.svc.backend.ItemExists(ctx, d.id, id)
}

// GetData returns the raw stored JSON for id, with found=false when the
// item does not exist.
func (d *Dataset) GetData(ctx context.Context, id string) ([]byte, bool, error) {
	return d.svc.backend.Get(ctx, d.id, id)
}

// GetDataObj returns the parsed form of GetData.
func (d *Dataset) GetDataObj(ctx context.Context, id string) (document.Object, bool, error) {
	raw, found, err := d.GetData(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	obj, err := document.Parse(raw)
	if err != nil {
		return nil, true, fmt.Errorf("parse stored document %s/%s: %w", d.id, id, err)
	}
	return obj, true, nil
}

// DeleteData removes an item. No validation or enrichment applies.
func (d *Dataset) DeleteData(ctx context.Context, id string) (bool, error) {
	return d.svc.backend.Delete(ctx, d.id, id)
}

// MappingPaths lists dotted field paths from the live index mapping,
// narrowed by the filter.
func (d *Dataset) MappingPaths(ctx context.Context, f mapping.Filter) ([]string, error) {
	fields, err := d.mappingFields(ctx)
	if err != nil {
		return nil, err
	}
	return mapping.Paths(fields, f), nil
}

// TextMappingPaths lists dotted paths of all text fields.
func (d *Dataset) TextMappingPaths(ctx context.Context) ([]string, error) {
	return d.MappingPaths(ctx, mapping.Filter{Kind: mapping.KindText})
}

// SchemaPropertyPaths locates every dotted path in the declared schema
// whose leaf property key equals name.
func (d *Dataset) SchemaPropertyPaths(ctx context.Context, name string) ([]string, error) {
	reg, err := d.Registration(ctx)
	if err != nil {
		return nil, err
	}
	if !reg.HasSchema() {
		return nil, nil
	}
	paths, err := mapping.SchemaPropertyPaths(reg.JSONSchema, name)
	if err != nil {
		return nil, fmt.Errorf("walk schema of %s: %w", d.id, err)
	}
	return paths, nil
}

// SendErrorMsgToAuthor mails the dataset author about a template runtime
// error at the given url. Nothing is sent when the author identity is not
// a valid address. Send failures are swallowed in production and returned
// when strict notification is on.
func (d *Dataset) SendErrorMsgToAuthor(ctx context.Context, pageURL, errMsg string) error {
	reg, err := d.Registration(ctx)
	if err != nil {
		return err
	}
	if !domds.IsValidEmail(reg.CreatedBy) {
		return nil
	}

	subject := "Chyba v template vasi datove sady " + reg.Name
	body := fmt.Sprintf(
		"Upozornění! V template vaší datové sady %s na adrese %s došlo k chybě:\n\n%s\n\n"+
			"Prosíme opravte ji co nejdříve.\nDíky\n\nTeam StatWatch.",
		d.id, pageURL, errMsg)

	if err := d.svc.mail.Send(reg.CreatedBy, subject, body); err != nil {
		d.svc.logger.Error("author notification failed",
			zap.String("dataset", d.id), zap.String("to", reg.CreatedBy), zap.Error(err))
		if d.svc.strictNotify {
			return fmt.Errorf("notify author: %w", err)
		}
	}
	return nil
}

func (d *Dataset) mappingFields(ctx context.Context) ([]mapping.Field, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fieldsLoaded {
		return d.fields, nil
	}

	fields, err := d.svc.backend.Mapping(ctx, d.id)
	if err != nil {
		return nil, fmt.Errorf("load mapping of %s: %w", d.id, err)
	}
	d.fields = fields
	d.fieldsLoaded = true
	return fields, nil
}
