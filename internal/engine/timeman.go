package engine

import (
	"time"
)

// softLimitPercent is the share of the budget after which no new
// iteration is started.
const softLimitPercent = 90

// TimeManager tracks the wall-clock budget of one search.
type TimeManager struct {
	budget    time.Duration // Zero means no limit
	softLimit time.Duration // Don't start another depth past this
	startTime time.Time     // When search started
	deadline  time.Time     // Hard stop
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a search with the given budget. A budget of
// zero or less searches without a time limit.
func (tm *TimeManager) Init(budget time.Duration) {
	tm.startTime = time.Now()
	tm.budget = max(budget, 0)
	tm.deadline = time.Time{}
	tm.softLimit = 0
	if tm.budget > 0 {
		tm.deadline = tm.startTime.Add(tm.budget)
		tm.softLimit = tm.budget * softLimitPercent / 100
	}
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Limited reports whether the search has a time budget.
func (tm *TimeManager) Limited() bool {
	return tm.budget > 0
}

// ShouldStop returns true once the deadline has passed.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Limited() && !time.Now().Before(tm.deadline)
}

// PastSoftLimit returns true once most of the budget is spent, so that
// starting a deeper iteration would almost certainly be wasted.
func (tm *TimeManager) PastSoftLimit() bool {
	return tm.Limited() && tm.Elapsed() >= tm.softLimit
}

// Remaining returns the time left before the deadline, clamped to the budget.
func (tm *TimeManager) Remaining() time.Duration {
	if !tm.Limited() {
		return 0
	}
	return clamp(time.Until(tm.deadline), 0, tm.budget)
}
