package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gridfan/f1-fantasy/internal/domain/race"
)

type RaceRepository struct {
	db *sqlx.DB
}

func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

type raceRow struct {
	ID             string     `db:"id"`
	Season         int        `db:"season"`
	Round          int        `db:"round"`
	Name           string     `db:"name"`
	FirstPractice  *time.Time `db:"first_practice_at"`
	SecondPractice *time.Time `db:"second_practice_at"`
	ThirdPractice  *time.Time `db:"third_practice_at"`
	Qualifying     *time.Time `db:"qualifying_at"`
	Sprint         *time.Time `db:"sprint_at"`
	Race           *time.Time `db:"race_at"`
	Winner         *string    `db:"winner_driver_id"`
	FastLap        *string    `db:"fastest_lap_driver_id"`
	TeamWinner     *string    `db:"winner_constructor_id"`
}

const raceColumns = `
	id, season, round, name,
	first_practice_at, second_practice_at, third_practice_at,
	qualifying_at, sprint_at, race_at,
	winner_driver_id, fastest_lap_driver_id, winner_constructor_id`

func (r *RaceRepository) GetByID(ctx context.Context, id string) (race.Race, bool, error) {
	var row raceRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+raceColumns+`
		FROM races
		WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return race.Race{}, false, nil
		}
		return race.Race{}, false, fmt.Errorf("select race %s: %w", id, err)
	}

	return mapRaceRow(row), true, nil
}

func (r *RaceRepository) Upsert(ctx context.Context, item race.Race) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO races (
			id, season, round, name,
			first_practice_at, second_practice_at, third_practice_at,
			qualifying_at, sprint_at, race_at,
			winner_driver_id, fastest_lap_driver_id, winner_constructor_id
		) VALUES (
			:id, :season, :round, :name,
			:first_practice_at, :second_practice_at, :third_practice_at,
			:qualifying_at, :sprint_at, :race_at,
			:winner_driver_id, :fastest_lap_driver_id, :winner_constructor_id
		)
		ON CONFLICT (id) DO UPDATE SET
			season = EXCLUDED.season,
			round = EXCLUDED.round,
			name = EXCLUDED.name,
			first_practice_at = EXCLUDED.first_practice_at,
			second_practice_at = EXCLUDED.second_practice_at,
			third_practice_at = EXCLUDED.third_practice_at,
			qualifying_at = EXCLUDED.qualifying_at,
			sprint_at = EXCLUDED.sprint_at,
			race_at = EXCLUDED.race_at,
			winner_driver_id = EXCLUDED.winner_driver_id,
			fastest_lap_driver_id = EXCLUDED.fastest_lap_driver_id,
			winner_constructor_id = EXCLUDED.winner_constructor_id`,
		mapRaceToRow(item))
	if err != nil {
		return fmt.Errorf("upsert race %s: %w", item.ID, err)
	}
	return nil
}

func (r *RaceRepository) ListRacedBetween(ctx context.Context, since, until time.Time) ([]race.Race, error) {
	var rows []raceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+raceColumns+`
		FROM races
		WHERE race_at >= $1 AND race_at < $2
		ORDER BY season ASC, round ASC`, since, until)
	if err != nil {
		return nil, fmt.Errorf("list races in window: %w", err)
	}

	out := make([]race.Race, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRaceRow(row))
	}
	return out, nil
}

func (r *RaceRepository) GetBySeasonAndRound(ctx context.Context, season, round int) (race.Race, bool, error) {
	var row raceRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+raceColumns+`
		FROM races
		WHERE season = $1 AND round = $2`, season, round)
	if err != nil {
		if isNotFound(err) {
			return race.Race{}, false, nil
		}
		return race.Race{}, false, fmt.Errorf("select race season=%d round=%d: %w", season, round, err)
	}

	return mapRaceRow(row), true, nil
}

func mapRaceRow(row raceRow) race.Race {
	return race.Race{
		ID:     row.ID,
		Season: row.Season,
		Round:  row.Round,
		Name:   row.Name,
		Schedule: race.Schedule{
			FirstPractice:  row.FirstPractice,
			SecondPractice: row.SecondPractice,
			ThirdPractice:  row.ThirdPractice,
			Qualifying:     row.Qualifying,
			Sprint:         row.Sprint,
			Race:           row.Race,
		},
		Winner:     row.Winner,
		FastLap:    row.FastLap,
		TeamWinner: row.TeamWinner,
	}
}

func mapRaceToRow(item race.Race) raceRow {
	return raceRow{
		ID:             item.ID,
		Season:         item.Season,
		Round:          item.Round,
		Name:           item.Name,
		FirstPractice:  item.Schedule.FirstPractice,
		SecondPractice: item.Schedule.SecondPractice,
		ThirdPractice:  item.Schedule.ThirdPractice,
		Qualifying:     item.Schedule.Qualifying,
		Sprint:         item.Schedule.Sprint,
		Race:           item.Schedule.Race,
		Winner:         item.Winner,
		FastLap:        item.FastLap,
		TeamWinner:     item.TeamWinner,
	}
}
