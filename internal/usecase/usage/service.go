// Package usage reports embedding token consumption against the configured budget.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/policyqa/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (untracked mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the window of period containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())
	r := domusage.Report{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Budget:      domusage.Budget{TokensRemaining: -1, ResetsAt: end},
	}
	if s.br == nil {
		return r
	}

	var limit, used, remaining int64
	if period == domusage.PeriodMonth {
		limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
	} else {
		limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
	}

	r.Tracked = true
	r.TokensUsed = used
	r.Budget.TokensLimit = limit
	r.Budget.TokensRemaining = remaining
	r.Budget.IsExhausted = limit > 0 && remaining <= 0
	return r
}
