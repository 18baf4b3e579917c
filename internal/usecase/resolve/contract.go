package resolve

import (
	"context"
	"time"

	"github.com/statwatch/datasets/internal/domain/person"
)

// Directory is the canonical person directory the resolver reads and writes.
// Find methods return (nil, nil) on a clean miss.
type Directory interface {
	// FindExact looks up an identity by its exact natural key.
	FindExact(ctx context.Context, jmeno, prijmeni string, narozeni time.Time) (*person.Identity, error)
	// FindASCII looks up an identity by the diacritics-stripped natural key.
	FindASCII(ctx context.Context, jmeno, prijmeni string, narozeni time.Time) (*person.Identity, error)
	// Save persists an identity. No uniqueness guard: concurrent saves of the
	// same natural key race (last write wins).
	Save(ctx context.Context, p *person.Identity) error
}
