package race

import (
	"fmt"
	"time"
)

// Schedule holds the session timestamps of one race weekend. Every session is
// optional; sprint weekends and legacy seasons carry different subsets.
type Schedule struct {
	FirstPractice  *time.Time
	SecondPractice *time.Time
	ThirdPractice  *time.Time
	Qualifying     *time.Time
	Sprint         *time.Time
	Race           *time.Time
}

// Race is one round of a season. Winner/FastLap/TeamWinner stay nil until the
// provider publishes results; a non-nil Winner marks the race completed.
type Race struct {
	ID         string
	Season     int
	Round      int
	Name       string
	Schedule   Schedule
	Winner     *string
	FastLap    *string
	TeamWinner *string
}

func (r Race) Completed() bool {
	return r.Winner != nil && *r.Winner != ""
}

func (r Race) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("race id is required")
	}
	if r.Season <= 0 {
		return fmt.Errorf("race season must be greater than zero")
	}
	if r.Round <= 0 {
		return fmt.Errorf("race round must be greater than zero")
	}

	return nil
}
