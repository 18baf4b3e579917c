package datasets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/db"
	dbRedis "github.com/statwatch/datasets/internal/db/redis"
	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/mapping"
	"github.com/statwatch/datasets/internal/notify"
	indexrepo "github.com/statwatch/datasets/internal/repository/index"
	"github.com/statwatch/datasets/internal/repository/ocrqueue"
	personrepo "github.com/statwatch/datasets/internal/repository/person"
	registrationrepo "github.com/statwatch/datasets/internal/repository/registration"
	datasetuc "github.com/statwatch/datasets/internal/usecase/dataset"
	healthuc "github.com/statwatch/datasets/internal/usecase/health"
	registryuc "github.com/statwatch/datasets/internal/usecase/registry"
	resolveuc "github.com/statwatch/datasets/internal/usecase/resolve"
	"github.com/statwatch/datasets/internal/validate"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the wired use cases.
type datasetAPI interface {
	ID() string
	Registration(ctx context.Context) (*domds.Registration, error)
	AddData(ctx context.Context, payload []byte, id, createdBy string, opts datasetuc.AddOptions) (string, error)
	ItemExists(ctx context.Context, id string) (bool, error)
	GetData(ctx context.Context, id string) ([]byte, bool, error)
	DeleteData(ctx context.Context, id string) (bool, error)
	MappingPaths(ctx context.Context, f mapping.Filter) ([]string, error)
	TextMappingPaths(ctx context.Context) ([]string, error)
	SchemaPropertyPaths(ctx context.Context, name string) ([]string, error)
	SendErrorMsgToAuthor(ctx context.Context, pageURL, errMsg string) error
}

type registrarAPI interface {
	Register(ctx context.Context, reg *domds.Registration) (datasetAPI, error)
}

type openerAPI interface {
	Get(ctx context.Context, id string) (datasetAPI, error)
	Invalidate(id string)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the datasets SDK entry point.
type Client struct {
	store     db.Store
	registrar registrarAPI
	opener    openerAPI
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("datasets: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("datasets: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("datasets: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := indexrepo.New(store)
	regs := registrationrepo.New(store)
	persons := personrepo.New(store)
	queue := ocrqueue.New(store, cfg.ocrQueueKey)

	var mailer datasetuc.MailNotifier = notify.Discard{}
	if cfg.smtp != nil {
		mailer = notify.NewMailer(*cfg.smtp, logger)
	}

	svc := datasetuc.New(
		backend, regs,
		validate.NewSchemaValidator(), validate.NewTemplateValidator(),
		resolveuc.New(persons, logger),
		queue, mailer, logger,
	).
		WithRegistryDataset(cfg.registryDataset).
		WithStrictNotify(cfg.strictNotify)

	registry := registryuc.New(svc, cfg.cacheTTL)

	return &Client{
		store:     store,
		registrar: serviceAdapter{svc: svc},
		opener:    registryAdapter{reg: registry},
		healthSvc: healthuc.New(store, queue),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Register provisions a new dataset: normalizes its id, validates schema
// and templates, creates the backing index and persists the registration.
// Returns the opened handle.
func (c *Client) Register(ctx context.Context, reg Registration) (ds *Dataset, err error) {
	start := time.Now()
	defer func() { c.obs.observe("register", start, err) }()

	api, err := c.registrar.Register(ctx, reg.toDomain())
	if err != nil {
		return nil, err
	}
	c.opener.Invalidate(api.ID())
	return &Dataset{ds: api, obs: c.obs}, nil
}

// Dataset opens a handle to an existing dataset. Handles are cached and
// reused until the registry TTL expires. Fails with ErrNotFound when the
// dataset was never registered.
func (c *Client) Dataset(ctx context.Context, id string) (ds *Dataset, err error) {
	start := time.Now()
	defer func() { c.obs.observe("open", start, err) }()

	api, err := c.opener.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Dataset{ds: api, obs: c.obs}, nil
}

// Invalidate drops a cached dataset handle so the next open re-reads its
// registration.
func (c *Client) Invalidate(id string) {
	c.opener.Invalidate(id)
}

// serviceAdapter narrows the dataset service to the registrar interface.
type serviceAdapter struct {
	svc *datasetuc.Service
}

func (a serviceAdapter) Register(ctx context.Context, reg *domds.Registration) (datasetAPI, error) {
	ds, err := a.svc.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// registryAdapter narrows the handle registry to the opener interface.
type registryAdapter struct {
	reg *registryuc.Registry
}

func (a registryAdapter) Get(ctx context.Context, id string) (datasetAPI, error) {
	ds, err := a.reg.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (a registryAdapter) Invalidate(id string) {
	a.reg.Invalidate(id)
}
