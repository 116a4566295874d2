package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gridfan/f1-fantasy/internal/domain/race"
)

type RaceRepository struct {
	mu    sync.RWMutex
	items map[string]race.Race
}

func NewRaceRepository() *RaceRepository {
	return &RaceRepository{items: make(map[string]race.Race)}
}

func (r *RaceRepository) GetByID(_ context.Context, id string) (race.Race, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return cloneRace(item), ok, nil
}

func (r *RaceRepository) Upsert(_ context.Context, item race.Race) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[item.ID] = cloneRace(item)
	r.mu.Unlock()
	return nil
}

func (r *RaceRepository) ListRacedBetween(_ context.Context, since, until time.Time) ([]race.Race, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]race.Race, 0, len(r.items))
	for _, item := range r.items {
		session := item.Schedule.Race
		if session == nil {
			continue
		}
		at := session.UTC()
		if at.Before(since) || !at.Before(until) {
			continue
		}
		out = append(out, cloneRace(item))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].Round < out[j].Round
	})
	return out, nil
}

func (r *RaceRepository) GetBySeasonAndRound(_ context.Context, season, round int) (race.Race, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Season == season && item.Round == round {
			return cloneRace(item), true, nil
		}
	}
	return race.Race{}, false, nil
}

func cloneRace(item race.Race) race.Race {
	item.Schedule = race.Schedule{
		FirstPractice:  cloneTime(item.Schedule.FirstPractice),
		SecondPractice: cloneTime(item.Schedule.SecondPractice),
		ThirdPractice:  cloneTime(item.Schedule.ThirdPractice),
		Qualifying:     cloneTime(item.Schedule.Qualifying),
		Sprint:         cloneTime(item.Schedule.Sprint),
		Race:           cloneTime(item.Schedule.Race),
	}
	item.Winner = cloneString(item.Winner)
	item.FastLap = cloneString(item.FastLap)
	item.TeamWinner = cloneString(item.TeamWinner)
	return item
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
