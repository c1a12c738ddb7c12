package estimator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestForTaskGroup_MedianOfMedians(t *testing.T) {
	payment := decimal.RequireFromString("1.00")

	// Per-task medians are 10, 12, and 15 minutes; the group estimate is the
	// middle one.
	reports := map[string][]time.Duration{
		"task-1": {10 * time.Minute},
		"task-2": {8 * time.Minute, 12 * time.Minute, 40 * time.Minute},
		"task-3": {15 * time.Minute, 15 * time.Minute},
	}

	estimate := ForTaskGroup(payment, reports)
	if estimate == nil {
		t.Fatal("expected an estimate")
	}
	if estimate.Time != 12*time.Minute {
		t.Errorf("expected group time 12m, got %s", estimate.Time)
	}

	// $1.00 per 12 minutes is $5.00/hr.
	if !estimate.Rate.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("expected rate 5.00, got %s", estimate.Rate)
	}
}

func TestForTaskGroup_EvenCountAveragesMiddlePair(t *testing.T) {
	payment := decimal.RequireFromString("1.00")
	reports := map[string][]time.Duration{
		"task-1": {10 * time.Minute, 20 * time.Minute},
	}

	estimate := ForTaskGroup(payment, reports)
	if estimate == nil {
		t.Fatal("expected an estimate")
	}
	if estimate.Time != 15*time.Minute {
		t.Errorf("expected 15m, got %s", estimate.Time)
	}
}

func TestForTaskGroup_NoReports(t *testing.T) {
	if estimate := ForTaskGroup(decimal.RequireFromString("1.00"), map[string][]time.Duration{}); estimate != nil {
		t.Errorf("expected nil estimate, got %+v", estimate)
	}

	// A task present with zero reports contributes nothing.
	reports := map[string][]time.Duration{"task-1": {}}
	if estimate := ForTaskGroup(decimal.RequireFromString("1.00"), reports); estimate != nil {
		t.Errorf("expected nil estimate, got %+v", estimate)
	}
}

func TestHourlyRate_FlooredAtOneCent(t *testing.T) {
	// $0.10 over 100 hours rounds to $0.00/hr; the floor keeps it at $0.01.
	rate := HourlyRate(decimal.RequireFromString("0.10"), 100*time.Hour)
	if !rate.Equal(MinimumRate) {
		t.Errorf("expected floor of 0.01, got %s", rate)
	}
}

func TestHourlyRate_RoundsToCurrencyPrecision(t *testing.T) {
	// $1.00 over 9 minutes is $6.666.../hr, rounded to $6.67.
	rate := HourlyRate(decimal.RequireFromString("1.00"), 9*time.Minute)
	if !rate.Equal(decimal.RequireFromString("6.67")) {
		t.Errorf("expected 6.67, got %s", rate)
	}
}
