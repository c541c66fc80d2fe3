package domain

import (
	"time"

	"github.com/demandcast/forecast-backend/internal/pkg/errs"
)

// Granularity is the forecast cadence.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDaily, GranularityMonthly, GranularityYearly:
		return Granularity(s), nil
	default:
		return "", &errs.ValidationError{Field: "granularity", Reason: "must be one of daily, monthly, yearly"}
	}
}

// Next returns the date one period after t at this cadence.
func (g Granularity) Next(t time.Time) time.Time {
	return g.Step(t, 1)
}

// Step returns the date n periods after t. Monthly and yearly steps clamp
// the day to the target month's length instead of normalizing through
// nonexistent dates, and a month-end anchor stays on month ends
// (2024-01-31 -> 2024-02-29 -> 2024-03-31).
func (g Granularity) Step(t time.Time, n int) time.Time {
	switch g {
	case GranularityMonthly:
		return addMonths(t, n)
	case GranularityYearly:
		return addMonths(t, 12*n)
	default:
		return t.AddDate(0, 0, n)
	}
}

// RangeAfter returns count contiguous dates starting one period after anchor.
// Every date is stepped from the anchor itself, so a clamped month in the
// middle of the range never shifts the dates that follow it.
func (g Granularity) RangeAfter(anchor time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, count)
	for i := 1; i <= count; i++ {
		dates = append(dates, g.Step(anchor, i))
	}
	return dates
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	idx := year*12 + int(month) - 1 + months
	targetYear, targetMonth := idx/12, time.Month(idx%12)+1
	last := lastDayOf(targetYear, targetMonth)
	if day > last || day == lastDayOf(year, month) {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func lastDayOf(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
