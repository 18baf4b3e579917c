package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	QueueDepth int64
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	queue QueueDepther
}

// New creates a Service. queue can be nil.
func New(db DBPinger, queue QueueDepther) *Service {
	return &Service{db: db, queue: queue}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var depth int64

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.queue != nil {
		n, err := s.queue.Depth(ctx)
		if err != nil {
			checks["ocr_queue"] = CheckError
		} else {
			checks["ocr_queue"] = CheckOK
			depth = n
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, QueueDepth: depth}
}
