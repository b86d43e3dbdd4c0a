package policyqa

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "policyqa"
	metricsSubsystem = "sdk"
)

// observer logs and counts client operations. A nil *observer is a no-op,
// and either sink may be absent.
type observer struct {
	logger *slog.Logger

	// nil unless WithPrometheus was given.
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}

	calls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "operations_total",
		Help:      "Client operations by name and outcome.",
	}, []string{"operation", "status"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "operation_duration_seconds",
		Help:      "Client operation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	o.calls, o.latency = calls, latency
	return o, nil
}

// register adds c to reg. When an identical collector is already registered
// (e.g. a second Client sharing one registry) that collector is returned instead.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("policyqa: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("policyqa: metric already registered as %T", dup.ExistingCollector)
	}
	return existing, nil
}

// observe records op as finished. attrs are extra slog key/value pairs.
func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)

	if o.calls != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.calls.WithLabelValues(op, status).Inc()
		o.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	if o.logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+6)
	args = append(args, "op", op, "duration", elapsed)
	args = append(args, attrs...)
	if err != nil {
		o.logger.Warn("operation failed", append(args, "error", err)...)
		return
	}
	o.logger.Debug("operation completed", args...)
}
