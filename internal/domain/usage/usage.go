// Package usage describes embedding token consumption reports.
package usage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ErrInvalidPeriod signals an unsupported report period.
var ErrInvalidPeriod = errors.New("invalid usage period")

// ParsePeriod maps a query value to a Period. Empty means PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (want day or month)", ErrInvalidPeriod, s)
	}
}

// Bounds returns the UTC window containing now.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Budget is the token budget of one window. A zero TokensLimit means unlimited,
// and TokensRemaining is then -1.
type Budget struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// Report is the embedding token usage for one period.
type Report struct {
	Period      Period    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	// Tracked is false when no budget tracker is configured; counts are then zero.
	Tracked    bool   `json:"tracked"`
	TokensUsed int64  `json:"tokens_used"`
	Budget     Budget `json:"budget"`
}
