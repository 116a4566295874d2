package usecase

import (
	"context"
	"time"
)

// ExternalRace is one event on the provider's season schedule, with session
// instants already normalized to UTC. Sessions the provider omits stay nil.
type ExternalRace struct {
	Season         string
	Round          int
	Name           string
	FirstPractice  *time.Time
	SecondPractice *time.Time
	ThirdPractice  *time.Time
	Qualifying     *time.Time
	Sprint         *time.Time
	Race           *time.Time
}

// ExternalDriverResult is one classified (or retired) entry of a race result.
// Position is nil when the provider reports a non-numeric classification
// such as "R" or "DQ".
type ExternalDriverResult struct {
	DriverID   string
	CarNumber  string
	Position   *int
	Status     string
	Retired    bool
	FastestLap bool
}

// RaceDataProvider is the outbound port to the public race-data API.
type RaceDataProvider interface {
	FetchNextRace(ctx context.Context) (ExternalRace, error)
	FetchSeasonSchedule(ctx context.Context, season string) ([]ExternalRace, error)
	FetchRaceResults(ctx context.Context, season string, round int) ([]ExternalDriverResult, error)
}
