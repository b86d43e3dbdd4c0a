package policyqa

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/policyqa/internal/usecase/health"
)

// Health status values.
const (
	StatusOK       = string(healthuc.Healthy)
	StatusDegraded = string(healthuc.Degraded)
	StatusError    = string(healthuc.Unhealthy)
)

// HealthStatus is the aggregated readiness of the client.
type HealthStatus struct {
	Status string            // StatusOK, StatusDegraded or StatusError
	Checks map[string]string // "index", "embedding" → "ok"/"error"
}

// Serving reports whether questions can be answered, possibly degraded.
func (h HealthStatus) Serving() bool { return h.Status != StatusError }

// Health reports whether an index is loaded and the encoder is reachable.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	c.obs.observe("health", start, nil, "status", h.Status)
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
