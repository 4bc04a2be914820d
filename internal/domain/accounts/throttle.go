package accounts

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultLockoutWindow is the trailing interval over which failures count.
	DefaultLockoutWindow = 10 * time.Minute

	// DefaultMaxFailures locks an account once this many failures land
	// inside the window.
	DefaultMaxFailures = 3
)

// Tracker counts failed login attempts inside a trailing window and decides
// lockout. The count-then-record step is not serialized: two concurrent
// failures may both pass the check and briefly push the recorded count past
// the threshold. The account still locks on the attempt that reaches the
// threshold.
type Tracker struct {
	log         FailureLog
	window      time.Duration
	maxFailures int
}

func NewTracker(log FailureLog, window time.Duration, maxFailures int) *Tracker {
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &Tracker{log: log, window: window, maxFailures: maxFailures}
}

func (t *Tracker) RecordFailure(ctx context.Context, email string) error {
	if err := t.log.Record(ctx, email, time.Now()); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

func (t *Tracker) CountRecentFailures(ctx context.Context, email string) (int, error) {
	count, err := t.log.CountSince(ctx, email, time.Now().Add(-t.window))
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return count, nil
}

func (t *Tracker) IsLockedOut(ctx context.Context, email string) (bool, error) {
	count, err := t.CountRecentFailures(ctx, email)
	if err != nil {
		return false, err
	}
	return count >= t.maxFailures, nil
}

// RemainingAttempts converts the failure count observed before the current
// failure was recorded into the number of attempts left before lockout.
// Never negative, never more than maxFailures-1.
func (t *Tracker) RemainingAttempts(countBefore int) int {
	remaining := t.maxFailures - 1 - countBefore
	if remaining < 0 {
		return 0
	}
	return remaining
}
