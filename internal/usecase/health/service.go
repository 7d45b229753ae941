package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the store answers.
	Healthy Status = "ok"
	// Unhealthy indicates the store does not answer or is not connected.
	Unhealthy Status = "error"
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

// Service coordinates health checks.
type Service struct {
	db DBPinger
}

// New creates a Service.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// Check pings the store.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"database": CheckOK}
	status := Healthy
	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks}
}
