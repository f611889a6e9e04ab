package docsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// HealthStatus is the store and places index state as seen by the client.
// Status is "ok" when both are up, "degraded" when the index is missing and
// "error" when the store does not answer.
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// IndexReady reports whether the places index exists and can serve searches.
func (h HealthStatus) IndexReady() bool {
	return h.Checks[healthuc.CheckIndex] == string(healthuc.CheckOK)
}

// Health pings the store and looks up the configured index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	out := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		out.Checks[name] = string(res)
	}
	return out
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
