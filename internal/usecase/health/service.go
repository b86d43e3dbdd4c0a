// Package health aggregates component checks into one readiness report.
package health

import (
	"context"
	"errors"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates no index is available to answer questions.
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

// DefaultCheckTimeout bounds each probe.
const DefaultCheckTimeout = 2 * time.Second

var errIndexNotLoaded = errors.New("index not loaded")

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

type check struct {
	name     string
	critical bool
	run      func(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	checks  []check
	timeout time.Duration
}

// New creates a Service. The index check is critical; cache and embedding are
// optional and skipped when nil.
func New(index IndexState, cache CachePinger, embedding EmbeddingChecker) *Service {
	checks := []check{{
		name:     "index",
		critical: true,
		run: func(context.Context) error {
			if !index.IndexLoaded() {
				return errIndexNotLoaded
			}
			return nil
		},
	}}
	if cache != nil {
		checks = append(checks, check{name: "cache", run: cache.Ping})
	}
	if embedding != nil {
		checks = append(checks, check{name: "embedding", run: embedding.HealthCheck})
	}
	return &Service{checks: checks, timeout: DefaultCheckTimeout}
}

// Check runs every probe in order, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.checks))}
	for _, c := range s.checks {
		if err := s.probe(ctx, c); err != nil {
			report.Checks[c.name] = CheckError
			switch {
			case c.critical:
				report.Status = Unhealthy
			case report.Status == Healthy:
				report.Status = Degraded
			}
			continue
		}
		report.Checks[c.name] = CheckOK
	}
	return report
}

func (s *Service) probe(ctx context.Context, c check) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return c.run(ctx)
}
