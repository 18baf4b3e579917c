// Package index stores dataset items as JSON documents and maintains one
// FT index per dataset for full-text search over its text fields.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/statwatch/datasets/internal/db"
	"github.com/statwatch/datasets/internal/domain/mapping"
)

// store is the consumer interface for dataset item storage (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/dataset.IndexBackend on Redis JSON + FT.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func indexName(dataset string) string { return "ds-idx:" + dataset }
func docPrefix(dataset string) string { return "ds:" + dataset + ":doc:" }
func docKey(dataset, id string) string {
	return docPrefix(dataset) + id
}
func mappingKey(dataset string) string { return "ds:" + dataset + ":mapping" }

// Exists reports whether the dataset's FT index exists.
func (r *Repo) Exists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, indexName(index))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	return ok, nil
}

// Create persists the field mapping and creates the FT index over the
// dataset's document prefix. On FT.CREATE failure the mapping is rolled
// back so Exists stays consistent with the stored state.
func (r *Repo) Create(ctx context.Context, index string, fields []mapping.Field) error {
	def, err := buildIndex(index, fields)
	if err != nil {
		return fmt.Errorf("build index %s: %w", index, err)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal mapping %s: %w", index, err)
	}
	if err := r.store.Set(ctx, mappingKey(index), raw); err != nil {
		return fmt.Errorf("store mapping %s: %w", index, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		cleanupErr := r.store.Del(ctx, mappingKey(index))
		return errors.Join(fmt.Errorf("create index %s: %w", index, err), cleanupErr)
	}
	return nil
}

// Mapping returns the persisted field mapping for the dataset.
func (r *Repo) Mapping(ctx context.Context, index string) ([]mapping.Field, error) {
	raw, err := r.store.Get(ctx, mappingKey(index))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load mapping %s: %w", index, err)
	}
	var fields []mapping.Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", index, err)
	}
	return fields, nil
}

// Get reads a stored item. found=false when the key does not exist.
func (r *Repo) Get(ctx context.Context, index, id string) ([]byte, bool, error) {
	raw, err := r.store.JSONGet(ctx, docKey(index, id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("json.get %s/%s: %w", index, id, err)
	}
	return raw, true, nil
}

// Upsert writes an item at the document root, replacing any previous
// version, and returns the item id as the final id.
func (r *Repo) Upsert(ctx context.Context, index, id string, doc []byte) (string, error) {
	if err := r.store.JSONSet(ctx, docKey(index, id), "$", doc); err != nil {
		return "", fmt.Errorf("json.set %s/%s: %w", index, id, err)
	}
	return id, nil
}

// Delete removes an item, reporting whether it existed.
func (r *Repo) Delete(ctx context.Context, index, id string) (bool, error) {
	key := docKey(index, id)
	found, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check item %s/%s: %w", index, id, err)
	}
	if !found {
		return false, nil
	}
	if err := r.store.Del(ctx, key); err != nil {
		return false, fmt.Errorf("del item %s/%s: %w", index, id, err)
	}
	return true, nil
}

// ItemExists reports whether an item key exists.
func (r *Repo) ItemExists(ctx context.Context, index, id string) (bool, error) {
	found, err := r.store.Exists(ctx, docKey(index, id))
	if err != nil {
		return false, fmt.Errorf("check item %s/%s: %w", index, id, err)
	}
	return found, nil
}

// buildIndex maps the dataset field tree onto an FT schema: text fields
// become TEXT, numbers NUMERIC, keywords TAG. Nested paths are addressed
// with JSONPath and aliased with underscores.
func buildIndex(dataset string, fields []mapping.Field) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(dataset)).
		OnJSON().
		Prefix(docPrefix(dataset))

	indexed := 0
	for _, path := range mapping.Paths(fields, mapping.Filter{Kind: mapping.KindText}) {
		b.TextAs("$."+path, alias(path))
		indexed++
	}
	for _, path := range mapping.Paths(fields, mapping.Filter{Kind: mapping.KindNumber}) {
		b.NumericAs("$."+path, alias(path))
		indexed++
	}
	for _, path := range mapping.Paths(fields, mapping.Filter{Kind: mapping.KindKeyword}) {
		b.TagAs("$."+path, alias(path))
		indexed++
	}
	if indexed == 0 {
		// Schemas of booleans and dates only still need a queryable index;
		// the payload id is always present.
		b.TagAs("$.Id", "Id")
	}

	return b.Build()
}

func alias(path string) string {
	return strings.ReplaceAll(path, ".", "_")
}
