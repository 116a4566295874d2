package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
	"github.com/gridfan/f1-fantasy/internal/domain/race"
	"github.com/gridfan/f1-fantasy/internal/domain/scoring"
	"github.com/gridfan/f1-fantasy/internal/domain/user"
	"github.com/gridfan/f1-fantasy/internal/platform/logging"
)

const (
	defaultReconcileWindow = 7 * 24 * time.Hour
	defaultReconcilePool   = 4
)

// ReconciliationService applies published race results to stored teams and
// user totals. Runs are idempotent: recomputing a race that is already
// settled produces zero deltas.
type ReconciliationService struct {
	races    race.Repository
	teams    fantasyteam.Repository
	drivers  driver.Repository
	users    user.Repository
	provider RaceDataProvider
	logger   *logging.Logger
	window   time.Duration
	poolSize int
	now      func() time.Time
}

func NewReconciliationService(
	races race.Repository,
	teams fantasyteam.Repository,
	drivers driver.Repository,
	users user.Repository,
	provider RaceDataProvider,
	logger *logging.Logger,
	window time.Duration,
	poolSize int,
) *ReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = defaultReconcileWindow
	}
	if poolSize < 1 {
		poolSize = defaultReconcilePool
	}

	return &ReconciliationService{
		races:    races,
		teams:    teams,
		drivers:  drivers,
		users:    users,
		provider: provider,
		logger:   logger,
		window:   window,
		poolSize: poolSize,
		now:      time.Now,
	}
}

// RaceOutcome is the per-race row of a reconciliation report.
type RaceOutcome struct {
	RaceID           string `json:"raceId"`
	Season           int    `json:"season"`
	Round            int    `json:"round"`
	ResultsProcessed int    `json:"resultsProcessed"`
	TeamsScored      int    `json:"teamsScored"`
	TeamsUpdated     int    `json:"teamsUpdated"`
	TeamsFailed      int    `json:"teamsFailed,omitempty"`
	Skipped          bool   `json:"skipped"`
	Error            string `json:"error,omitempty"`
}

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
	RacesScanned int           `json:"racesScanned"`
	TeamsUpdated int           `json:"teamsUpdated"`
	Failures     int           `json:"failures"`
	Outcomes     []RaceOutcome `json:"outcomes"`
}

// Run refreshes the season schedule, then recomputes every race whose grand
// prix ran inside the trailing window. Races are processed concurrently; one
// failing race never aborts the others.
func (s *ReconciliationService) Run(ctx context.Context) (ReconcileReport, error) {
	ctx, span := startSpan(ctx, "ReconciliationService.Run")
	var err error
	defer func() { endSpan(span, err) }()

	report := ReconcileReport{StartedAt: s.now().UTC()}

	if err := s.RefreshSchedule(ctx, "current"); err != nil {
		// A stale schedule is still usable; keep reconciling with what we have.
		s.logger.WarnContext(ctx, "schedule refresh failed, reconciling with stored schedule", "error", err)
	}

	until := s.now().UTC()
	since := until.Add(-s.window)
	candidates, err := s.races.ListRacedBetween(ctx, since, until)
	if err != nil {
		err = fmt.Errorf("list candidate races: %w", err)
		return report, err
	}
	report.RacesScanned = len(candidates)

	if len(candidates) == 0 {
		report.FinishedAt = s.now().UTC()
		return report, nil
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		err = fmt.Errorf("create reconcile pool: %w", err)
		return report, err
	}
	defer pool.Release()

	var (
		mu           sync.Mutex
		wg           sync.WaitGroup
		teamsUpdated int64
		failures     int64
	)
	outcomes := make([]RaceOutcome, 0, len(candidates))

	for _, candidate := range candidates {
		candidate := candidate
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			outcome := s.processRace(ctx, candidate)
			atomic.AddInt64(&teamsUpdated, int64(outcome.TeamsUpdated))
			if outcome.Error != "" {
				atomic.AddInt64(&failures, 1)
			}
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			outcomes = append(outcomes, RaceOutcome{
				RaceID: candidate.ID,
				Season: candidate.Season,
				Round:  candidate.Round,
				Error:  submitErr.Error(),
			})
			mu.Unlock()
			atomic.AddInt64(&failures, 1)
		}
	}
	wg.Wait()

	report.TeamsUpdated = int(teamsUpdated)
	report.Failures = int(failures)
	report.Outcomes = outcomes
	report.FinishedAt = s.now().UTC()

	s.logger.InfoContext(ctx, "reconciliation run finished",
		"races_scanned", report.RacesScanned,
		"teams_updated", report.TeamsUpdated,
		"failures", report.Failures,
	)

	return report, nil
}

// Backfill recomputes a single race on demand, fetching the season schedule
// first when the race is not stored yet.
func (s *ReconciliationService) Backfill(ctx context.Context, season string, round int) (RaceOutcome, error) {
	ctx, span := startSpan(ctx, "ReconciliationService.Backfill",
		attribute.String("season", season),
		attribute.Int("round", round),
	)
	var err error
	defer func() { endSpan(span, err) }()

	seasonYear, convErr := strconv.Atoi(season)
	if convErr != nil || round <= 0 {
		err = fmt.Errorf("%w: season must be a year and round positive", ErrInvalidInput)
		return RaceOutcome{}, err
	}

	target, found, err := s.races.GetBySeasonAndRound(ctx, seasonYear, round)
	if err != nil {
		err = fmt.Errorf("load race season=%d round=%d: %w", seasonYear, round, err)
		return RaceOutcome{}, err
	}
	if !found {
		if err = s.RefreshSchedule(ctx, season); err != nil {
			return RaceOutcome{}, err
		}
		target, found, err = s.races.GetBySeasonAndRound(ctx, seasonYear, round)
		if err != nil {
			err = fmt.Errorf("load race season=%d round=%d: %w", seasonYear, round, err)
			return RaceOutcome{}, err
		}
		if !found {
			err = fmt.Errorf("%w: season %d round %d", ErrNotFound, seasonYear, round)
			return RaceOutcome{}, err
		}
	}

	outcome := s.processRace(ctx, target)
	if outcome.Error != "" {
		err = fmt.Errorf("backfill season=%d round=%d: %s", seasonYear, round, outcome.Error)
		return outcome, err
	}

	return outcome, nil
}

// RefreshSchedule upserts the provider's schedule for one season. Result
// markers already applied to a stored race survive the refresh.
func (s *ReconciliationService) RefreshSchedule(ctx context.Context, season string) error {
	ctx, span := startSpan(ctx, "ReconciliationService.RefreshSchedule",
		attribute.String("season", season),
	)
	var err error
	defer func() { endSpan(span, err) }()

	schedule, err := s.provider.FetchSeasonSchedule(ctx, season)
	if err != nil {
		err = fmt.Errorf("fetch season schedule: %w", err)
		return err
	}

	for _, item := range schedule {
		seasonYear, convErr := strconv.Atoi(item.Season)
		if convErr != nil || item.Round <= 0 {
			s.logger.WarnContext(ctx, "skip schedule row with malformed identity",
				"season", item.Season, "round", item.Round, "race_name", item.Name)
			continue
		}

		incoming := race.Race{
			ID:     raceStorageID(item.Season, item.Round),
			Season: seasonYear,
			Round:  item.Round,
			Name:   item.Name,
			Schedule: race.Schedule{
				FirstPractice:  item.FirstPractice,
				SecondPractice: item.SecondPractice,
				ThirdPractice:  item.ThirdPractice,
				Qualifying:     item.Qualifying,
				Sprint:         item.Sprint,
				Race:           item.Race,
			},
		}

		existing, found, getErr := s.races.GetByID(ctx, incoming.ID)
		if getErr != nil {
			err = fmt.Errorf("load race %s: %w", incoming.ID, getErr)
			return err
		}
		if found {
			incoming.Winner = existing.Winner
			incoming.FastLap = existing.FastLap
			incoming.TeamWinner = existing.TeamWinner
		}

		if upsertErr := s.races.Upsert(ctx, incoming); upsertErr != nil {
			err = fmt.Errorf("upsert race %s: %w", incoming.ID, upsertErr)
			return err
		}
	}

	return nil
}

func (s *ReconciliationService) processRace(ctx context.Context, target race.Race) RaceOutcome {
	ctx, span := startSpan(ctx, "ReconciliationService.processRace",
		attribute.String("race_id", target.ID),
	)
	defer span.End()

	outcome := RaceOutcome{RaceID: target.ID, Season: target.Season, Round: target.Round}

	results, err := s.provider.FetchRaceResults(ctx, strconv.Itoa(target.Season), target.Round)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if len(results) == 0 {
		outcome.Skipped = true
		s.logger.InfoContext(ctx, "results not published yet, skipping race", "race_id", target.ID)
		return outcome
	}
	outcome.ResultsProcessed = len(results)

	allDrivers, err := s.drivers.List(ctx)
	if err != nil {
		outcome.Error = fmt.Sprintf("list drivers: %v", err)
		return outcome
	}
	driverByID := make(map[string]driver.Driver, len(allDrivers))
	for _, d := range allDrivers {
		driverByID[d.ID] = d
	}

	// Results are indexed by provider driver id and by car number so teams
	// survive the provider switching identifier style between seasons.
	resultByKey := make(map[string]ExternalDriverResult, len(results)*2)
	for _, item := range results {
		if item.DriverID != "" {
			resultByKey[item.DriverID] = item
		}
		if item.CarNumber != "" {
			resultByKey["car:"+item.CarNumber] = item
		}
	}

	teams, err := s.teams.ListByRace(ctx, target.ID)
	if err != nil {
		outcome.Error = fmt.Sprintf("list teams: %v", err)
		return outcome
	}
	outcome.TeamsScored = len(teams)

	for _, team := range teams {
		total := 0
		for _, rosterID := range team.DriverIDs {
			result, found := s.lookupResult(ctx, resultByKey, driverByID, rosterID, target.ID)
			if !found {
				continue
			}
			total += scoring.Score(toScoringResult(result), team.IsCaptain(rosterID))
		}

		if total == team.Points {
			continue
		}
		delta := total - team.Points

		if err := s.settleTeam(ctx, team, total, delta); err != nil {
			s.logger.ErrorContext(ctx, "team settlement failed",
				"race_id", target.ID, "team_id", team.ID, "user_id", team.UserID, "error", err)
			outcome.TeamsFailed++
			if outcome.Error == "" {
				outcome.Error = fmt.Sprintf("settle team %s: %v", team.ID, err)
			}
			continue
		}
		outcome.TeamsUpdated++
	}

	if err := s.applyResultMarkers(ctx, target, results, driverByID); err != nil {
		outcome.Error = fmt.Sprintf("mark race %s: %v", target.ID, err)
	}

	return outcome
}

// PointsSettler is implemented by team stores that can persist a recomputed
// team total and the owner's credit in one atomic write.
type PointsSettler interface {
	SettlePoints(ctx context.Context, teamID, userID string, points, delta int) error
}

// settleTeam persists one recomputed total and the matching user delta. The
// two writes either both land or both stay unapplied, so a failed team never
// leaves the points comparison lying about what was credited.
func (s *ReconciliationService) settleTeam(ctx context.Context, team fantasyteam.Team, total, delta int) error {
	if settler, ok := s.teams.(PointsSettler); ok {
		return settler.SettlePoints(ctx, team.ID, team.UserID, total, delta)
	}

	// Credit the owner before touching the team row. If the team write fails
	// the stored points still differ from the recomputed total, so the next
	// run retries the team instead of treating the delta as applied.
	if err := s.users.AddFantasyPoints(ctx, team.UserID, delta); err != nil {
		return fmt.Errorf("credit user %s: %w", team.UserID, err)
	}
	if err := s.teams.UpdatePoints(ctx, team.ID, total); err != nil {
		if undoErr := s.users.AddFantasyPoints(ctx, team.UserID, -delta); undoErr != nil {
			return fmt.Errorf("update team %s: %v (credit rollback failed: %w)", team.ID, err, undoErr)
		}
		return fmt.Errorf("update team %s: %w", team.ID, err)
	}
	return nil
}

// lookupResult resolves a roster entry against the indexed results, falling
// back from driver id to car number. Fallback hits are logged; they indicate
// reference data drifting from the provider.
func (s *ReconciliationService) lookupResult(
	ctx context.Context,
	resultByKey map[string]ExternalDriverResult,
	driverByID map[string]driver.Driver,
	rosterID, raceID string,
) (ExternalDriverResult, bool) {
	if result, ok := resultByKey[rosterID]; ok {
		return result, true
	}

	record, ok := driverByID[rosterID]
	if !ok || record.Number <= 0 {
		return ExternalDriverResult{}, false
	}

	result, ok := resultByKey["car:"+strconv.Itoa(record.Number)]
	if !ok {
		return ExternalDriverResult{}, false
	}

	s.logger.WarnContext(ctx, "matched result by car number fallback",
		"race_id", raceID,
		"driver_id", rosterID,
		"car_number", record.Number,
	)
	return result, true
}

func (s *ReconciliationService) applyResultMarkers(
	ctx context.Context,
	target race.Race,
	results []ExternalDriverResult,
	driverByID map[string]driver.Driver,
) error {
	for _, item := range results {
		if item.Position == nil || *item.Position != 1 {
			continue
		}
		winner := item.DriverID
		target.Winner = &winner
		if record, ok := driverByID[item.DriverID]; ok && record.ConstructorID != "" {
			constructor := record.ConstructorID
			target.TeamWinner = &constructor
		}
		break
	}
	for _, item := range results {
		if item.FastestLap {
			fastest := item.DriverID
			target.FastLap = &fastest
			break
		}
	}

	return s.races.Upsert(ctx, target)
}

func toScoringResult(item ExternalDriverResult) scoring.Result {
	out := scoring.Result{
		Position:   item.Position,
		FastestLap: item.FastestLap,
	}
	if item.Retired {
		status := item.Status
		out.Retired = &status
	}
	return out
}

// raceStorageID is the stable identifier for one round; refreshes and
// backfills for the same round always address the same row.
func raceStorageID(season string, round int) string {
	return fmt.Sprintf("%s-r%02d", season, round)
}
