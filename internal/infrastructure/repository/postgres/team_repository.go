package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

type teamRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	RaceID    string         `db:"race_id"`
	DriverIDs pq.StringArray `db:"driver_ids"`
	CaptainID *string        `db:"captain_driver_id"`
	Points    int            `db:"points"`
	CreatedAt time.Time      `db:"created_at"`
}

const teamColumns = `id, user_id, race_id, driver_ids, captain_driver_id, points, created_at`

// Create inserts a team. The unique index on (user_id, race_id) is the
// authority on the one-team-per-race rule; a violation surfaces as
// fantasyteam.ErrAlreadyExists.
func (r *TeamRepository) Create(ctx context.Context, team fantasyteam.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO fantasy_teams (id, user_id, race_id, driver_ids, captain_driver_id, points, created_at)
		VALUES (:id, :user_id, :race_id, :driver_ids, :captain_driver_id, :points, :created_at)`,
		mapTeamToRow(team))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user=%s race=%s", fantasyteam.ErrAlreadyExists, team.UserID, team.RaceID)
		}
		return fmt.Errorf("insert team %s: %w", team.ID, err)
	}
	return nil
}

func (r *TeamRepository) GetByUserAndRace(ctx context.Context, userID, raceID string) (fantasyteam.Team, bool, error) {
	var row teamRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+teamColumns+`
		FROM fantasy_teams
		WHERE user_id = $1 AND race_id = $2`, userID, raceID)
	if err != nil {
		if isNotFound(err) {
			return fantasyteam.Team{}, false, nil
		}
		return fantasyteam.Team{}, false, fmt.Errorf("select team user=%s race=%s: %w", userID, raceID, err)
	}

	return mapTeamRow(row), true, nil
}

func (r *TeamRepository) ListByUser(ctx context.Context, userID string) ([]fantasyteam.Team, error) {
	var rows []teamRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+teamColumns+`
		FROM fantasy_teams
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams user=%s: %w", userID, err)
	}

	return mapTeamRows(rows), nil
}

func (r *TeamRepository) ListByRace(ctx context.Context, raceID string) ([]fantasyteam.Team, error) {
	var rows []teamRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+teamColumns+`
		FROM fantasy_teams
		WHERE race_id = $1
		ORDER BY id ASC`, raceID)
	if err != nil {
		return nil, fmt.Errorf("list teams race=%s: %w", raceID, err)
	}

	return mapTeamRows(rows), nil
}

func (r *TeamRepository) UpdatePoints(ctx context.Context, teamID string, points int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE fantasy_teams SET points = $1 WHERE id = $2`, points, teamID)
	if err != nil {
		return fmt.Errorf("update team %s points: %w", teamID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team %s points: %w", teamID, err)
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}
	return nil
}

// SettlePoints writes a recomputed team total and credits the owner's
// cumulative points in one transaction, so a crash between the two writes
// cannot leave a delta half applied.
func (r *TeamRepository) SettlePoints(ctx context.Context, teamID, userID string, points, delta int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settle team %s: %w", teamID, err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE fantasy_teams SET points = $1 WHERE id = $2`, points, teamID)
	if err != nil {
		return fmt.Errorf("update team %s points: %w", teamID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team %s points: %w", teamID, err)
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE users SET fantasy_points = fantasy_points + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("credit user %s: %w", userID, err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit user %s: %w", userID, err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle team %s: %w", teamID, err)
	}
	return nil
}

func mapTeamRow(row teamRow) fantasyteam.Team {
	return fantasyteam.Team{
		ID:        row.ID,
		UserID:    row.UserID,
		RaceID:    row.RaceID,
		DriverIDs: append([]string(nil), row.DriverIDs...),
		CaptainID: row.CaptainID,
		Points:    row.Points,
		CreatedAt: row.CreatedAt,
	}
}

func mapTeamRows(rows []teamRow) []fantasyteam.Team {
	out := make([]fantasyteam.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamRow(row))
	}
	return out
}

func mapTeamToRow(team fantasyteam.Team) teamRow {
	return teamRow{
		ID:        team.ID,
		UserID:    team.UserID,
		RaceID:    team.RaceID,
		DriverIDs: pq.StringArray(team.DriverIDs),
		CaptainID: team.CaptainID,
		Points:    team.Points,
		CreatedAt: team.CreatedAt,
	}
}
