package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the database is up but the index is not usable.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckMissing indicates the checked resource does not exist.
	CheckMissing CheckResult = "missing"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckDatabase = "database"
	CheckIndex    = "index"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexes IndexChecker
	index   string
}

// New creates a Service. indexes can be nil.
func New(db DBPinger, indexes IndexChecker, index string) *Service {
	return &Service{db: db, indexes: indexes, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	if err := s.db.Ping(ctx); err != nil {
		checks[CheckDatabase] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks[CheckDatabase] = CheckOK

	if s.indexes == nil {
		return Report{Status: Healthy, Checks: checks}
	}

	exists, err := s.indexes.IndexExists(ctx, s.index)
	switch {
	case err != nil:
		checks[CheckIndex] = CheckError
	case !exists:
		checks[CheckIndex] = CheckMissing
	default:
		checks[CheckIndex] = CheckOK
	}

	status := Healthy
	if checks[CheckIndex] != CheckOK {
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
