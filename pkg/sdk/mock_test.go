package datasets

import (
	"context"

	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/mapping"
	datasetuc "github.com/statwatch/datasets/internal/usecase/dataset"
	healthuc "github.com/statwatch/datasets/internal/usecase/health"
)

// --- datasetAPI mock ---

type mockDatasetAPI struct {
	id             string
	registrationFn func(ctx context.Context) (*domds.Registration, error)
	addDataFn      func(ctx context.Context, payload []byte, id, createdBy string, opts datasetuc.AddOptions) (string, error)
	itemExistsFn   func(ctx context.Context, id string) (bool, error)
	getDataFn      func(ctx context.Context, id string) ([]byte, bool, error)
	deleteDataFn   func(ctx context.Context, id string) (bool, error)
	mappingFn      func(ctx context.Context, f mapping.Filter) ([]string, error)
	textPathsFn    func(ctx context.Context) ([]string, error)
	schemaPathsFn  func(ctx context.Context, name string) ([]string, error)
	notifyFn       func(ctx context.Context, pageURL, errMsg string) error
}

func (m *mockDatasetAPI) ID() string { return m.id }

func (m *mockDatasetAPI) Registration(ctx context.Context) (*domds.Registration, error) {
	return m.registrationFn(ctx)
}

func (m *mockDatasetAPI) AddData(
	ctx context.Context, payload []byte, id, createdBy string, opts datasetuc.AddOptions,
) (string, error) {
	return m.addDataFn(ctx, payload, id, createdBy, opts)
}

func (m *mockDatasetAPI) ItemExists(ctx context.Context, id string) (bool, error) {
	return m.itemExistsFn(ctx, id)
}

func (m *mockDatasetAPI) GetData(ctx context.Context, id string) ([]byte, bool, error) {
	return m.getDataFn(ctx, id)
}

func (m *mockDatasetAPI) DeleteData(ctx context.Context, id string) (bool, error) {
	return m.deleteDataFn(ctx, id)
}

func (m *mockDatasetAPI) MappingPaths(ctx context.Context, f mapping.Filter) ([]string, error) {
	return m.mappingFn(ctx, f)
}

func (m *mockDatasetAPI) TextMappingPaths(ctx context.Context) ([]string, error) {
	return m.textPathsFn(ctx)
}

func (m *mockDatasetAPI) SchemaPropertyPaths(ctx context.Context, name string) ([]string, error) {
	return m.schemaPathsFn(ctx, name)
}

func (m *mockDatasetAPI) SendErrorMsgToAuthor(ctx context.Context, pageURL, errMsg string) error {
	return m.notifyFn(ctx, pageURL, errMsg)
}

// --- registrarAPI mock ---

type mockRegistrar struct {
	registerFn func(ctx context.Context, reg *domds.Registration) (datasetAPI, error)
}

func (m *mockRegistrar) Register(ctx context.Context, reg *domds.Registration) (datasetAPI, error) {
	return m.registerFn(ctx, reg)
}

// --- openerAPI mock ---

type mockOpener struct {
	getFn       func(ctx context.Context, id string) (datasetAPI, error)
	invalidated []string
}

func (m *mockOpener) Get(ctx context.Context, id string) (datasetAPI, error) {
	return m.getFn(ctx, id)
}

func (m *mockOpener) Invalidate(id string) {
	m.invalidated = append(m.invalidated, id)
}

// --- healthUseCase mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }
