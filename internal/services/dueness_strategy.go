package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// DuenessChecker decides whether a recurring rule must fire at now given
// when it last fired. A zero lastExecution means the rule never ran.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return lastExecution.Format(time.DateOnly) != now.Format(time.DateOnly)
}

// WeeklyChecker fires when at least seven days passed since the last run.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return now.Sub(lastExecution) >= 7*24*time.Hour
}

// MonthSpanChecker fires on the start date's day of month every Months
// months, counted from the start date. Days past the end of a short month
// fall on its last day.
type MonthSpanChecker struct {
	Months int
}

var (
	MonthlyChecker   = MonthSpanChecker{Months: 1}
	QuarterlyChecker = MonthSpanChecker{Months: 3}
	YearlyChecker    = MonthSpanChecker{Months: 12}
)

func (c MonthSpanChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	occ, ok := latestOccurrence(startDate, now, c.Months)
	if !ok {
		return false
	}
	last := time.Date(lastExecution.Year(), lastExecution.Month(), lastExecution.Day(), 0, 0, 0, 0, time.UTC)
	return last.Before(occ)
}

// latestOccurrence returns the last scheduled date on or before now.
func latestOccurrence(start core.Date, now time.Time, span int) (time.Time, bool) {
	if span < 1 {
		span = 1
	}
	elapsed := (now.Year()-start.Year())*12 + int(now.Month()) - start.Month()
	if elapsed < 0 {
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for k := elapsed / span; k >= 0; k-- {
		occ := occurrence(start, k*span)
		if !occ.After(today) {
			return occ, true
		}
	}
	return time.Time{}, false
}

func occurrence(start core.Date, offsetMonths int) time.Time {
	first := time.Date(start.Year(), time.Month(start.Month())+time.Month(offsetMonths), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := start.Day()
	if day > lastDay {
		day = lastDay
	}
	return first.AddDate(0, 0, day-1)
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:     DailyChecker{},
	core.Weekly:    WeeklyChecker{},
	core.Monthly:   MonthlyChecker,
	core.Quarterly: QuarterlyChecker,
	core.Yearly:    YearlyChecker,
}

func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFrequency, frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker adds or replaces the checker for a frequency.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
