// Package person stores the canonical person directory as Redis hashes,
// keyed by the natural key and by its diacritics-stripped form.
package person

import (
	"context"
	"fmt"
	"strings"
	"time"

	domper "github.com/statwatch/datasets/internal/domain/person"
)

// store is the consumer interface for the person directory (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/resolve.Directory.
type Repo struct {
	store store
}

// New creates a person directory repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

const birthFormat = "2006-01-02"

func exactKey(jmeno, prijmeni string, narozeni time.Time) string {
	return "person:" + naturalKey(jmeno, prijmeni, narozeni)
}

func asciiKey(jmeno, prijmeni string, narozeni time.Time) string {
	return "person:ascii:" + naturalKey(
		domper.ASCIIFold(jmeno), domper.ASCIIFold(prijmeni), narozeni)
}

func naturalKey(jmeno, prijmeni string, narozeni time.Time) string {
	return strings.ToLower(jmeno) + "|" + strings.ToLower(prijmeni) + "|" + narozeni.Format(birthFormat)
}

// FindExact looks up an identity by its exact natural key.
func (r *Repo) FindExact(ctx context.Context, jmeno, prijmeni string, narozeni time.Time) (*domper.Identity, error) {
	return r.find(ctx, exactKey(jmeno, prijmeni, narozeni))
}

// FindASCII looks up an identity by the diacritics-stripped natural key, so
// "Dvorak" finds a directory entry stored as "Dvořák".
func (r *Repo) FindASCII(ctx context.Context, jmeno, prijmeni string, narozeni time.Time) (*domper.Identity, error) {
	return r.find(ctx, asciiKey(jmeno, prijmeni, narozeni))
}

func (r *Repo) find(ctx context.Context, key string) (*domper.Identity, error) {
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return identityFromHash(m)
}

// Save persists an identity under both its exact and ASCII-folded keys.
// Last write wins on concurrent saves of the same natural key.
func (r *Repo) Save(ctx context.Context, p *domper.Identity) error {
	fields := identityToHash(p)
	if err := r.store.HSet(ctx, exactKey(p.Jmeno, p.Prijmeni, p.Narozeni), fields); err != nil {
		return fmt.Errorf("hset person %s: %w", p.NameID, err)
	}
	if err := r.store.HSet(ctx, asciiKey(p.Jmeno, p.Prijmeni, p.Narozeni), fields); err != nil {
		return fmt.Errorf("hset person ascii %s: %w", p.NameID, err)
	}
	return nil
}

const (
	hashJmeno    = "jmeno"
	hashPrijmeni = "prijmeni"
	hashNarozeni = "narozeni"
	hashNameID   = "name_id"
)

func identityToHash(p *domper.Identity) map[string]string {
	return map[string]string{
		hashJmeno:    p.Jmeno,
		hashPrijmeni: p.Prijmeni,
		hashNarozeni: p.Narozeni.Format(birthFormat),
		hashNameID:   p.NameID,
	}
}

func identityFromHash(m map[string]string) (*domper.Identity, error) {
	born, err := time.Parse(birthFormat, m[hashNarozeni])
	if err != nil {
		return nil, fmt.Errorf("decode birthdate %q: %w", m[hashNarozeni], err)
	}
	return &domper.Identity{
		Jmeno:    m[hashJmeno],
		Prijmeni: m[hashPrijmeni],
		Narozeni: born,
		NameID:   m[hashNameID],
	}, nil
}
