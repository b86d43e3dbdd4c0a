package policyqa

import (
	"context"
	"strings"

	"github.com/kailas-cloud/policyqa/internal/domain"
	healthuc "github.com/kailas-cloud/policyqa/internal/usecase/health"
)

// --- qaUseCase mock ---

type mockQA struct {
	askFn     func(ctx context.Context, question string) (domain.Answer, error)
	stats     domain.Stats
	rebuildFn func(ctx context.Context) error
}

func (m *mockQA) Ask(ctx context.Context, question string) (domain.Answer, error) {
	return m.askFn(ctx, question)
}

func (m *mockQA) Stats() domain.Stats { return m.stats }

func (m *mockQA) Rebuild(ctx context.Context) error {
	return m.rebuildFn(ctx)
}

// --- healthUseCase mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Encoder mock ---

// mockEncoder buckets words by length, so related texts get overlapping vectors.
type mockEncoder struct {
	dim       int
	calls     int
	err       error
	healthErr error
}

func (m *mockEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, m.dim)
		for _, w := range strings.Fields(t) {
			v[len(w)%m.dim]++
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEncoder) Dimension() int { return m.dim }

func (m *mockEncoder) Name() string { return "mock-length" }

func (m *mockEncoder) HealthCheck(_ context.Context) error { return m.healthErr }
