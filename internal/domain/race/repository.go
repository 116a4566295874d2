package race

import (
	"context"
	"time"
)

// Repository describes race persistence needs from use cases. Upsert is
// keyed by race id so repeated schedule refreshes stay idempotent.
type Repository interface {
	GetByID(ctx context.Context, id string) (Race, bool, error)
	Upsert(ctx context.Context, item Race) error
	// ListRacedBetween returns races whose race session falls in
	// [since, until), whether or not results have been applied yet.
	ListRacedBetween(ctx context.Context, since, until time.Time) ([]Race, error)
	GetBySeasonAndRound(ctx context.Context, season, round int) (Race, bool, error)
}
