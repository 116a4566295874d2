package fantasyteam

import (
	"context"
	"errors"
)

// ErrAlreadyExists is returned by Create when a team for the same (user, race)
// pair is already stored. The uniqueness check lives in the storage layer so
// concurrent duplicate submissions cannot both succeed.
var ErrAlreadyExists = errors.New("fantasy team already exists for this race")

// Repository describes team persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, team Team) error
	GetByUserAndRace(ctx context.Context, userID, raceID string) (Team, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Team, error)
	ListByRace(ctx context.Context, raceID string) ([]Team, error)
	UpdatePoints(ctx context.Context, teamID string, points int) error
}
