package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/policyqa/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2026, time.May, 20, 9, 15, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	svc := New(br)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit: 10000, dailyUsed: 3000, remainingDaily: 7000,
		monthlyLimit: 100000, monthlyUsed: 50000, remainingMonthly: 50000,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period != domusage.PeriodDay || !r.Tracked {
		t.Errorf("unexpected report: %+v", r)
	}
	wantStart := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
	if !r.PeriodStart.Equal(wantStart) || !r.PeriodEnd.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("window = [%v, %v)", r.PeriodStart, r.PeriodEnd)
	}
	if r.TokensUsed != 3000 || r.Budget.TokensLimit != 10000 || r.Budget.TokensRemaining != 7000 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if r.Budget.IsExhausted {
		t.Error("budget should not be exhausted")
	}
	if !r.Budget.ResetsAt.Equal(r.PeriodEnd) {
		t.Errorf("resets at %v, want %v", r.Budget.ResetsAt, r.PeriodEnd)
	}
}

func TestGetReport_MonthlyExhausted(t *testing.T) {
	br := &mockBudgetReader{monthlyLimit: 5000, monthlyUsed: 5200, remainingMonthly: 0}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodMonth)

	if r.TokensUsed != 5200 || r.Budget.TokensLimit != 5000 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if !r.Budget.IsExhausted {
		t.Error("expected exhausted budget")
	}
	if !r.PeriodEnd.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("period end = %v", r.PeriodEnd)
	}
}

func TestGetReport_UnlimitedWindow(t *testing.T) {
	br := &mockBudgetReader{monthlyLimit: 5000, dailyUsed: 42, remainingDaily: -1}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget.TokensLimit != 0 || r.Budget.TokensRemaining != -1 || r.Budget.IsExhausted {
		t.Errorf("unexpected budget: %+v", r.Budget)
	}
	if r.TokensUsed != 42 {
		t.Errorf("tokens used = %d, want 42", r.TokensUsed)
	}
}

func TestGetReport_Untracked(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.Tracked || r.TokensUsed != 0 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Budget.TokensRemaining != -1 || r.Budget.IsExhausted {
		t.Errorf("unexpected budget: %+v", r.Budget)
	}
}
