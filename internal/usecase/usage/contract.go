package usage

// BudgetReader exposes the embedding token budget of one provider.
// Remaining values are -1 for a window without a limit.
type BudgetReader interface {
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
	MonthlyLimit() int64
	MonthlyUsed() int64
	RemainingMonthly() int64
}
