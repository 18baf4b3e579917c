// Package dataset orchestrates the ingestion and governance pipeline for
// named datasets: provisioning, schema validation, entity enrichment,
// index writes and post-write task dispatch.
package dataset

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/domain"
	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/mapping"
)

// DefaultRegistryDataset is the dataset holding registrations themselves.
// Documents ingested into it are never scanned for process markers.
const DefaultRegistryDataset = "datasources"

// Service provisions datasets and opens handles to existing ones.
type Service struct {
	backend   IndexBackend
	regs      RegistrationStore
	schemas   SchemaValidator
	templates TemplateValidator
	resolver  Resolver
	ocr       OCRQueue
	mail      MailNotifier
	logger    *zap.Logger

	registryDataset string
	strictNotify    bool
	now             func() time.Time
}

// New creates the dataset service.
func New(
	backend IndexBackend,
	regs RegistrationStore,
	schemas SchemaValidator,
	templates TemplateValidator,
	resolver Resolver,
	ocr OCRQueue,
	mail MailNotifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		backend:         backend,
		regs:            regs,
		schemas:         schemas,
		templates:       templates,
		resolver:        resolver,
		ocr:             ocr,
		mail:            mail,
		logger:          logger,
		registryDataset: DefaultRegistryDataset,
		now:             time.Now,
	}
}

// WithRegistryDataset overrides the registration-store dataset name.
func (s *Service) WithRegistryDataset(name string) *Service {
	if name != "" {
		s.registryDataset = strings.ToLower(name)
	}
	return s
}

// WithStrictNotify makes author-notification failures propagate to the
// caller. Enabled outside production so broken mail setup is visible.
func (s *Service) WithStrictNotify(strict bool) *Service {
	s.strictNotify = strict
	return s
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register provisions a new dataset: validates the registration, creates
// the backing index and persists the registration record. The two write
// steps are not transactional: a failure between them leaves an index
// without a registration, recovered by re-running Register after dropping
// the orphan index.
func (s *Service) Register(ctx context.Context, reg *domds.Registration) (*Dataset, error) {
	if reg == nil {
		return nil, domain.NewError("", domain.ErrNotFound, "nil registration")
	}
	if !reg.HasSchema() {
		return nil, domain.NewError(reg.DatasetID, domain.ErrMissingSchema, "")
	}

	reg.NormalizeShortName()
	id := reg.DatasetID
	if id == "" {
		return nil, domain.NewError(id, domain.ErrMissingID, "dataset id is empty after normalization")
	}

	if err := s.checkTemplate(id, "searchResultTemplate", reg.SearchResultTemplate); err != nil {
		return nil, err
	}
	if err := s.checkTemplate(id, "detailTemplate", reg.DetailTemplate); err != nil {
		return nil, err
	}

	fields, err := mapping.FieldsFromSchema(reg.JSONSchema)
	if err != nil {
		return nil, domain.NewError(id, domain.ErrMissingSchema, err.Error())
	}

	exists, err := s.backend.Exists(ctx, id)
	if err != nil {
		return nil, domain.NewError(id, domain.ErrWriteFailed, err.Error())
	}
	if exists {
		return nil, domain.NewError(id, domain.ErrAlreadyRegistered, "")
	}

	if err := s.backend.Create(ctx, id, fields); err != nil {
		return nil, domain.NewError(id, domain.ErrWriteFailed, err.Error())
	}
	if err := s.regs.Add(ctx, reg); err != nil {
		// Index already exists at this point; see the method comment.
		return nil, domain.NewError(id, domain.ErrWriteFailed, err.Error())
	}

	s.logger.Info("dataset registered",
		zap.String("dataset", id), zap.String("created_by", reg.CreatedBy))

	ds := s.newDataset(id)
	ds.reg = reg
	return ds, nil
}

// Open returns a handle to an existing dataset, or domain.ErrNotFound when
// no backing index exists.
func (s *Service) Open(ctx context.Context, datasetID string) (*Dataset, error) {
	id := strings.ToLower(strings.TrimSpace(datasetID))
	exists, err := s.backend.Exists(ctx, id)
	if err != nil {
		return nil, domain.NewError(id, domain.ErrWriteFailed, err.Error())
	}
	if !exists {
		return nil, domain.NewError(id, domain.ErrNotFound, "")
	}
	return s.newDataset(id), nil
}

// Exists reports whether a dataset's backing index exists. A missing index
// is a legitimate state, not an error.
func (s *Service) Exists(ctx context.Context, datasetID string) (bool, error) {
	id := strings.ToLower(strings.TrimSpace(datasetID))
	return s.backend.Exists(ctx, id)
}

func (s *Service) checkTemplate(datasetID, name string, tpl *domds.Template) error {
	if tpl.IsEmpty() {
		return nil
	}
	errs := s.templates.Validate(tpl.Body)
	if len(errs) == 0 {
		return nil
	}
	return domain.NewError(datasetID, domain.ErrTemplateInvalid,
		name+": "+strings.Join(errs, "\n"))
}

func (s *Service) newDataset(id string) *Dataset {
	return &Dataset{id: id, svc: s}
}
