package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
	"github.com/gridfan/f1-fantasy/internal/domain/race"
	"github.com/gridfan/f1-fantasy/internal/platform/cache"
	"github.com/gridfan/f1-fantasy/internal/platform/id"
	"github.com/gridfan/f1-fantasy/internal/platform/logging"
)

// ErrNotNextRace rejects submissions that target any race other than the one
// the provider reports as next on the calendar.
var ErrNotNextRace = errors.New("race is not the next scheduled race")

const nextRaceCacheKey = "provider:next-race"

type TeamService struct {
	teams    fantasyteam.Repository
	races    race.Repository
	drivers  driver.Repository
	provider RaceDataProvider
	cache    *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewTeamService(
	teams fantasyteam.Repository,
	races race.Repository,
	drivers driver.Repository,
	provider RaceDataProvider,
	store *cache.Store,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		teams:    teams,
		races:    races,
		drivers:  drivers,
		provider: provider,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateTeamInput struct {
	UserID    string
	RaceID    string
	DriverIDs []string
	CaptainID *string
}

// TeamView is a team plus the roster cost resolved from current driver data.
// Cost is never stored on the team itself.
type TeamView struct {
	Team      fantasyteam.Team
	TotalCost int64
}

// CreateTeam validates and stores a roster for the upcoming race. The order
// of the gates matters: race existence, next-race check, deadline, then
// roster composition. Storage-level uniqueness catches concurrent duplicates.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (TeamView, error) {
	ctx, span := startSpan(ctx, "TeamService.CreateTeam",
		attribute.String("race_id", input.RaceID),
	)
	var err error
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(input.UserID) == "" {
		err = fmt.Errorf("%w: user id is required", ErrInvalidInput)
		return TeamView{}, err
	}
	if strings.TrimSpace(input.RaceID) == "" {
		err = fmt.Errorf("%w: race id is required", ErrInvalidInput)
		return TeamView{}, err
	}

	target, found, err := s.races.GetByID(ctx, input.RaceID)
	if err != nil {
		err = fmt.Errorf("load race %s: %w", input.RaceID, err)
		return TeamView{}, err
	}
	if !found {
		err = fmt.Errorf("%w: race %s", ErrNotFound, input.RaceID)
		return TeamView{}, err
	}

	if err = s.checkIsNextRace(ctx, target); err != nil {
		return TeamView{}, err
	}

	if err = race.CheckOpen(target.Schedule, s.now()); err != nil {
		return TeamView{}, err
	}

	resolved, err := s.drivers.GetByIDs(ctx, input.DriverIDs)
	if err != nil {
		err = fmt.Errorf("resolve drivers: %w", err)
		return TeamView{}, err
	}
	if err = fantasyteam.ValidateRoster(input.DriverIDs, input.CaptainID, resolved); err != nil {
		return TeamView{}, err
	}

	team := fantasyteam.Team{
		ID:        id.New("team"),
		UserID:    input.UserID,
		RaceID:    input.RaceID,
		DriverIDs: append([]string(nil), input.DriverIDs...),
		CaptainID: input.CaptainID,
		CreatedAt: s.now().UTC(),
	}
	if err = s.teams.Create(ctx, team); err != nil {
		return TeamView{}, err
	}

	s.logger.InfoContext(ctx, "fantasy team created",
		"team_id", team.ID,
		"user_id", team.UserID,
		"race_id", team.RaceID,
	)

	return TeamView{Team: team, TotalCost: fantasyteam.TotalCost(team.DriverIDs, resolved)}, nil
}

// GetTeamForRace returns the caller's team for one race. Locked reflects the
// submission window at read time.
func (s *TeamService) GetTeamForRace(ctx context.Context, userID, raceID string) (fantasyteam.Team, error) {
	ctx, span := startSpan(ctx, "TeamService.GetTeamForRace",
		attribute.String("race_id", raceID),
	)
	var err error
	defer func() { endSpan(span, err) }()

	team, found, err := s.teams.GetByUserAndRace(ctx, userID, raceID)
	if err != nil {
		err = fmt.Errorf("load team user=%s race=%s: %w", userID, raceID, err)
		return fantasyteam.Team{}, err
	}
	if !found {
		err = fmt.Errorf("%w: no team for race %s", ErrNotFound, raceID)
		return fantasyteam.Team{}, err
	}

	team.Locked = s.isLocked(ctx, team.RaceID)
	return team, nil
}

// ListMyTeams returns every team the user has ever submitted.
func (s *TeamService) ListMyTeams(ctx context.Context, userID string) ([]fantasyteam.Team, error) {
	ctx, span := startSpan(ctx, "TeamService.ListMyTeams")
	var err error
	defer func() { endSpan(span, err) }()

	teams, err := s.teams.ListByUser(ctx, userID)
	if err != nil {
		err = fmt.Errorf("list teams user=%s: %w", userID, err)
		return nil, err
	}

	lockedByRace := make(map[string]bool, len(teams))
	for i := range teams {
		locked, ok := lockedByRace[teams[i].RaceID]
		if !ok {
			locked = s.isLocked(ctx, teams[i].RaceID)
			lockedByRace[teams[i].RaceID] = locked
		}
		teams[i].Locked = locked
	}

	return teams, nil
}

// ListDrivers exposes the driver reference data for roster building.
func (s *TeamService) ListDrivers(ctx context.Context) ([]driver.Driver, error) {
	ctx, span := startSpan(ctx, "TeamService.ListDrivers")
	var err error
	defer func() { endSpan(span, err) }()

	drivers, err := s.drivers.List(ctx)
	if err != nil {
		err = fmt.Errorf("list drivers: %w", err)
		return nil, err
	}
	return drivers, nil
}

// checkIsNextRace queries the provider (behind a short TTL cache) at call
// time rather than trusting any stored flag; the calendar can change.
func (s *TeamService) checkIsNextRace(ctx context.Context, target race.Race) error {
	next, err := s.nextRace(ctx)
	if err != nil {
		return err
	}

	if strconv.Itoa(target.Season) != next.Season || target.Round != next.Round {
		return fmt.Errorf("%w: submissions are open for %s round %d", ErrNotNextRace, next.Season, next.Round)
	}

	return nil
}

func (s *TeamService) nextRace(ctx context.Context) (ExternalRace, error) {
	out, err := s.cache.GetOrLoad(ctx, nextRaceCacheKey, func(ctx context.Context) (any, error) {
		return s.provider.FetchNextRace(ctx)
	})
	if err != nil {
		return ExternalRace{}, err
	}

	next, ok := out.(ExternalRace)
	if !ok {
		return ExternalRace{}, fmt.Errorf("unexpected cached value type %T", out)
	}

	return next, nil
}

func (s *TeamService) isLocked(ctx context.Context, raceID string) bool {
	target, found, err := s.races.GetByID(ctx, raceID)
	if err != nil || !found {
		if err != nil {
			s.logger.WarnContext(ctx, "lock state lookup failed", "race_id", raceID, "error", err)
		}
		return true
	}

	return race.CheckOpen(target.Schedule, s.now()) != nil
}
