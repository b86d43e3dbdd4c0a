package usage

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{" Month ", PeriodMonth, false},
		{"total", "", true},
		{"week", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPeriod_Bounds(t *testing.T) {
	now := time.Date(2026, time.February, 14, 17, 30, 0, 0, time.UTC)

	start, end := PeriodDay.Bounds(now)
	if !start.Equal(time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day start = %v", start)
	}
	if !end.Equal(time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day end = %v", end)
	}

	start, end = PeriodMonth.Bounds(now)
	if !start.Equal(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month start = %v", start)
	}
	if !end.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month end = %v", end)
	}
}
