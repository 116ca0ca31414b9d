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
	Status Status
	Checks map[string]CheckResult
}

// Checker verifies a single component's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Service coordinates health checks over the database, the embedding
// providers, and the generator.
type Service struct {
	db     DBPinger
	checks map[string]Checker
}

// New creates a health service. Nil checkers are skipped.
func New(db DBPinger, checks map[string]Checker) *Service {
	return &Service{db: db, checks: checks}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	for name, c := range s.checks {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
