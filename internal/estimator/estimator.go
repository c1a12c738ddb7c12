// Package estimator turns worker-reported completion times into an effective
// hourly rate for a task group. Reports are self-reported and untrusted, so the
// aggregate is a two-level median: per-task first, then across tasks, which
// limits the influence of any single worker or any single task.
package estimator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MinimumRate is the smallest persistable hourly rate. A rate that rounds to
// $0.00/hr is floored here so downstream ratio math stays defined.
var MinimumRate = decimal.RequireFromString("0.01")

// Estimate is the aggregate verdict for one task group.
type Estimate struct {
	Time time.Duration
	Rate decimal.Decimal
}

// ForTaskGroup computes the group-level estimate from eligible duration
// reports, keyed by task id. Returns nil when no task has any report.
func ForTaskGroup(payment decimal.Decimal, reportsByTask map[string][]time.Duration) *Estimate {
	taskMedians := make([]time.Duration, 0, len(reportsByTask))
	for _, reports := range reportsByTask {
		if len(reports) == 0 {
			continue
		}
		taskMedians = append(taskMedians, medianDuration(reports))
	}
	if len(taskMedians) == 0 {
		return nil
	}

	groupTime := medianDuration(taskMedians)
	if groupTime <= 0 {
		return nil
	}

	return &Estimate{
		Time: groupTime,
		Rate: HourlyRate(payment, groupTime),
	}
}

// HourlyRate converts a piece payment and an elapsed time into dollars per
// hour, rounded to currency precision and floored at MinimumRate.
func HourlyRate(payment decimal.Decimal, elapsed time.Duration) decimal.Decimal {
	hours := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(time.Hour)))
	rate := payment.Div(hours).Round(2)
	if rate.LessThanOrEqual(decimal.Zero) {
		return MinimumRate
	}
	return rate
}

func medianDuration(durations []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
