package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridfan/f1-fantasy/internal/domain/user"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID            string `db:"id"`
	Username      string `db:"username"`
	FantasyPoints int    `db:"fantasy_points"`
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, username, fantasy_points
		FROM users
		WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("select user %s: %w", id, err)
	}

	return user.User(row), true, nil
}

// EnsureExists registers a user if it is not present yet. Existing rows keep
// their accumulated points, only the username is refreshed.
func (r *UserRepository) EnsureExists(ctx context.Context, id, username string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, fantasy_points)
		VALUES ($1, $2, 0)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`, id, username)
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", id, err)
	}
	return nil
}

// AddFantasyPoints applies the delta inside the database so concurrent
// reconciliation workers never lose increments to read-modify-write races.
func (r *UserRepository) AddFantasyPoints(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET fantasy_points = fantasy_points + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("add points user=%s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add points user=%s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (r *UserRepository) ListByPoints(ctx context.Context, offset, limit int) ([]user.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, username, fantasy_points
		FROM users
		ORDER BY fantasy_points DESC, username ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users by points: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.User(row))
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) CountWithMorePoints(ctx context.Context, points int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM users WHERE fantasy_points > $1`, points)
	if err != nil {
		return 0, fmt.Errorf("count users ahead: %w", err)
	}
	return count, nil
}
