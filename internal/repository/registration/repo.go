// Package registration persists dataset registrations as Redis hashes.
package registration

import (
	"context"
	"encoding/json"
	"fmt"

	domds "github.com/statwatch/datasets/internal/domain/dataset"
)

// store is the consumer interface for registration records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/dataset.RegistrationStore.
type Repo struct {
	store store
}

// New creates a registration repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func regKey(datasetID string) string { return "reg:" + datasetID }

// Add persists a registration, overwriting any previous record for the
// same dataset id.
func (r *Repo) Add(ctx context.Context, reg *domds.Registration) error {
	fields, err := registrationToHash(reg)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, regKey(reg.DatasetID), fields); err != nil {
		return fmt.Errorf("hset registration %s: %w", reg.DatasetID, err)
	}
	return nil
}

// Get loads a registration, returning (nil, nil) when none exists.
func (r *Repo) Get(ctx context.Context, datasetID string) (*domds.Registration, error) {
	m, err := r.store.HGetAll(ctx, regKey(datasetID))
	if err != nil {
		return nil, fmt.Errorf("hgetall registration %s: %w", datasetID, err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return registrationFromHash(m)
}

// List returns the ids of every registered dataset.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, regKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan registrations: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len("reg:"):])
	}
	return ids, nil
}

const (
	hashDatasetID = "dataset_id"
	hashName      = "name"
	hashCreatedBy = "created_by"
	hashSchema    = "json_schema"
	hashSearchTpl = "search_result_template"
	hashDetailTpl = "detail_template"
)

func registrationToHash(reg *domds.Registration) (map[string]string, error) {
	fields := map[string]string{
		hashDatasetID: reg.DatasetID,
		hashName:      reg.Name,
		hashCreatedBy: reg.CreatedBy,
	}
	if reg.HasSchema() {
		fields[hashSchema] = string(reg.JSONSchema)
	}
	if !reg.SearchResultTemplate.IsEmpty() {
		raw, err := json.Marshal(reg.SearchResultTemplate)
		if err != nil {
			return nil, fmt.Errorf("marshal search template: %w", err)
		}
		fields[hashSearchTpl] = string(raw)
	}
	if !reg.DetailTemplate.IsEmpty() {
		raw, err := json.Marshal(reg.DetailTemplate)
		if err != nil {
			return nil, fmt.Errorf("marshal detail template: %w", err)
		}
		fields[hashDetailTpl] = string(raw)
	}
	return fields, nil
}

func registrationFromHash(m map[string]string) (*domds.Registration, error) {
	reg := &domds.Registration{
		DatasetID: m[hashDatasetID],
		Name:      m[hashName],
		CreatedBy: m[hashCreatedBy],
	}
	if s := m[hashSchema]; s != "" {
		reg.JSONSchema = json.RawMessage(s)
	}
	for field, dst := range map[string]**domds.Template{
		hashSearchTpl: &reg.SearchResultTemplate,
		hashDetailTpl: &reg.DetailTemplate,
	} {
		s := m[field]
		if s == "" {
			continue
		}
		var tpl domds.Template
		if err := json.Unmarshal([]byte(s), &tpl); err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", field, reg.DatasetID, err)
		}
		*dst = &tpl
	}
	return reg, nil
}
