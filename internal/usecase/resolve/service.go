// Package resolve links embedded person references in ingested documents to
// canonical identities in the person directory.
package resolve

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/domain/document"
	"github.com/statwatch/datasets/internal/domain/person"
	"github.com/statwatch/datasets/internal/metrics"
)

// Service resolves person markers against the directory.
type Service struct {
	dir    Directory
	logger *zap.Logger
}

// New creates an entity resolver.
func New(dir Directory, logger *zap.Logger) *Service {
	return &Service{dir: dir, logger: logger}
}

// ResolveMarker resolves one person marker and records the outcome in its
// OsobaId field: the resolved NameId, or explicit null when no identity
// could be determined. An already populated OsobaId is never overwritten.
// Directory failures are logged, never propagated; a failed resolution
// must not abort the enclosing ingestion.
func (s *Service) ResolveMarker(ctx context.Context, marker document.Object) {
	if existing, ok := marker.String(document.FieldOsobaID); ok && existing != "" {
		return
	}

	jmenoKey, hasJmeno := marker.KeyFold("jmeno", "name")
	prijmeniKey, hasPrijmeni := marker.KeyFold("prijmeni", "surname")
	narozeniKey, hasNarozeni := marker.KeyFold("narozeni", "birthdate")

	switch {
	case hasJmeno && hasPrijmeni && hasNarozeni:
		born, ok := s.birthdate(marker, narozeniKey)
		if !ok {
			return
		}
		jmeno, _ := marker.String(jmenoKey)
		prijmeni, _ := marker.String(prijmeniKey)
		marker.Set(document.FieldOsobaID, s.findOrCreate(ctx, jmeno, prijmeni, born))

	case hasNarozeni:
		celeKey, hasCele := marker.KeyFold("celejmeno", "fullname")
		if !hasCele {
			return
		}
		born, ok := s.birthdate(marker, narozeniKey)
		if !ok {
			return
		}
		full, _ := marker.String(celeKey)
		parsed, ok := person.ParseFullName(full)
		if !ok {
			metrics.EntityResolutionsTotal.WithLabelValues("none").Inc()
			marker.Set(document.FieldOsobaID, nil)
			return
		}
		marker.Set(document.FieldOsobaID, s.findOrCreate(ctx, parsed.Jmeno, parsed.Prijmeni, born))
	}
}

func (s *Service) birthdate(marker document.Object, key string) (time.Time, bool) {
	raw, ok := marker.String(key)
	if !ok {
		return time.Time{}, false
	}
	born, err := person.ParseBirthDate(raw)
	if err != nil {
		s.logger.Debug("unparsable birthdate in person marker", zap.String("value", raw))
		return time.Time{}, false
	}
	return born, true
}

// findOrCreate returns the NameId for the given natural key, creating the
// identity when the directory knows nothing about it. The returned value is
// either a string or nil; nil marks an explicit JSON null on the marker.
//
// The lookup and the conditional save are not atomic: two concurrent calls
// for the same unknown person can both create (see the service docs).
func (s *Service) findOrCreate(ctx context.Context, jmeno, prijmeni string, born time.Time) any {
	p, err := s.dir.FindExact(ctx, jmeno, prijmeni, born)
	if err != nil {
		s.logger.Warn("person lookup failed", zap.Error(err))
		metrics.EntityResolutionsTotal.WithLabelValues("error").Inc()
		return nil
	}
	if p == nil {
		p, err = s.dir.FindASCII(ctx, jmeno, prijmeni, born)
		if err != nil {
			s.logger.Warn("ascii person lookup failed", zap.Error(err))
			metrics.EntityResolutionsTotal.WithLabelValues("error").Inc()
			return nil
		}
	}

	created := false
	if p == nil {
		p = &person.Identity{Jmeno: jmeno, Prijmeni: prijmeni, Narozeni: born}
		created = true
	}

	if p.NameID == "" {
		p.NameID = p.UniqueNameID()
		if err := s.dir.Save(ctx, p); err != nil {
			s.logger.Warn("person save failed",
				zap.String("name_id", p.NameID), zap.Error(err))
			metrics.EntityResolutionsTotal.WithLabelValues("error").Inc()
			return nil
		}
	}

	if created {
		metrics.EntityResolutionsTotal.WithLabelValues("created").Inc()
	} else {
		metrics.EntityResolutionsTotal.WithLabelValues("matched").Inc()
	}
	return p.NameID
}
