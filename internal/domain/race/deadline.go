package race

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrScheduleUnavailable = errors.New("race schedule unavailable")
	ErrSubmissionLocked    = errors.New("submission window locked")
)

// LockInstant derives the moment team selection closes for a race: midnight
// UTC of the first-practice calendar day. Fails closed when the schedule has
// no first-practice timestamp.
func LockInstant(s Schedule) (time.Time, error) {
	if s.FirstPractice == nil {
		return time.Time{}, fmt.Errorf("%w: no first practice session", ErrScheduleUnavailable)
	}

	fp := s.FirstPractice.UTC()
	return time.Date(fp.Year(), fp.Month(), fp.Day(), 0, 0, 0, 0, time.UTC), nil
}

// CheckOpen reports whether a team may still be created or changed at now.
// Allowed strictly before the lock instant; at or after it the window is shut.
func CheckOpen(s Schedule, now time.Time) error {
	lock, err := LockInstant(s)
	if err != nil {
		return err
	}

	if !now.UTC().Before(lock) {
		return fmt.Errorf("%w: locked_at=%s now=%s",
			ErrSubmissionLocked,
			lock.Format(time.RFC3339),
			now.UTC().Format(time.RFC3339),
		)
	}

	return nil
}
