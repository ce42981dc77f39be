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

// Report aggregates health check results and corpus counters.
type Report struct {
	Status                  Status
	Checks                  map[string]CheckResult
	TotalDocuments          int
	DocumentsWithEmbeddings int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	docs      DocumentCounter
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, docs DocumentCounter, embedding EmbeddingChecker) *Service {
	return &Service{db: db, docs: docs, embedding: embedding}
}

// Check runs health checks against all components. Corpus counters are
// best-effort: they stay zero when the store is down.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	report := Report{Checks: checks, Status: Healthy}
	for _, v := range checks {
		if v == CheckError {
			report.Status = Degraded
			break
		}
	}

	if checks["database"] == CheckOK {
		if n, err := s.docs.Count(ctx); err == nil {
			report.TotalDocuments = n
		}
		if n, err := s.docs.CountWithEmbedding(ctx); err == nil {
			report.DocumentsWithEmbeddings = n
		}
	}

	return report
}
