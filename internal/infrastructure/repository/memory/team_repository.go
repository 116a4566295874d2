package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
)

type TeamRepository struct {
	mu    sync.Mutex
	items map[string]fantasyteam.Team
	// byUserRace enforces the one-team-per-race rule inside the same lock
	// that stores the row, mirroring the unique index in postgres.
	byUserRace map[string]string
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{
		items:      make(map[string]fantasyteam.Team),
		byUserRace: make(map[string]string),
	}
}

func (r *TeamRepository) Create(_ context.Context, team fantasyteam.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}

	key := userRaceKey(team.UserID, team.RaceID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUserRace[key]; exists {
		return fmt.Errorf("%w: user=%s race=%s", fantasyteam.ErrAlreadyExists, team.UserID, team.RaceID)
	}

	r.items[team.ID] = cloneTeam(team)
	r.byUserRace[key] = team.ID
	return nil
}

func (r *TeamRepository) GetByUserAndRace(_ context.Context, userID, raceID string) (fantasyteam.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUserRace[userRaceKey(userID, raceID)]
	if !ok {
		return fantasyteam.Team{}, false, nil
	}
	return cloneTeam(r.items[id]), true, nil
}

func (r *TeamRepository) ListByUser(_ context.Context, userID string) ([]fantasyteam.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fantasyteam.Team, 0, 8)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, cloneTeam(item))
		}
	}

	// Newest submission first, matching the postgres ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TeamRepository) ListByRace(_ context.Context, raceID string) ([]fantasyteam.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fantasyteam.Team, 0, 16)
	for _, item := range r.items {
		if item.RaceID == raceID {
			out = append(out, cloneTeam(item))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) UpdatePoints(_ context.Context, teamID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	item.Points = points
	r.items[teamID] = item
	return nil
}

func userRaceKey(userID, raceID string) string {
	return userID + "|" + raceID
}

func cloneTeam(item fantasyteam.Team) fantasyteam.Team {
	item.DriverIDs = append([]string(nil), item.DriverIDs...)
	item.CaptainID = cloneString(item.CaptainID)
	return item
}
