package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, bool, error)
	// AddFantasyPoints applies delta as an atomic increment, never a
	// read-modify-write, so deltas from other races are preserved.
	AddFantasyPoints(ctx context.Context, id string, delta int) error
	// ListByPoints pages users ordered by fantasy points descending,
	// username ascending on ties.
	ListByPoints(ctx context.Context, offset, limit int) ([]User, error)
	Count(ctx context.Context) (int, error)
	// CountWithMorePoints backs rank queries: rank = 1 + result.
	CountWithMorePoints(ctx context.Context, points int) (int, error)
}
