package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gridfan/f1-fantasy/internal/domain/user"
	"github.com/gridfan/f1-fantasy/internal/platform/logging"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
)

type LeaderboardService struct {
	users  user.Repository
	logger *logging.Logger
}

func NewLeaderboardService(users user.Repository, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{users: users, logger: logger}
}

type StandingsInput struct {
	Page  int
	Limit int
}

type StandingsEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	FantasyPoints int    `json:"fantasyPoints"`
}

type StandingsPage struct {
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalUsers int              `json:"totalUsers"`
	Entries    []StandingsEntry `json:"entries"`
}

type RankView struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	FantasyPoints int    `json:"fantasyPoints"`
	Rank          int    `json:"rank"`
}

// Standings pages the global leaderboard, ordered by points descending with
// username as the tie-breaker. Every call reads fresh standings; ranks are
// never cached across requests.
func (s *LeaderboardService) Standings(ctx context.Context, input StandingsInput) (StandingsPage, error) {
	ctx, span := startSpan(ctx, "LeaderboardService.Standings",
		attribute.Int("page", input.Page),
		attribute.Int("limit", input.Limit),
	)
	var err error
	defer func() { endSpan(span, err) }()

	if input.Page == 0 {
		input.Page = 1
	}
	if input.Limit == 0 {
		input.Limit = defaultLeaderboardLimit
	}
	if input.Page < 1 {
		err = fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
		return StandingsPage{}, err
	}
	if input.Limit < 1 || input.Limit > maxLeaderboardLimit {
		err = fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxLeaderboardLimit)
		return StandingsPage{}, err
	}

	offset := (input.Page - 1) * input.Limit
	rows, err := s.users.ListByPoints(ctx, offset, input.Limit)
	if err != nil {
		err = fmt.Errorf("list standings: %w", err)
		return StandingsPage{}, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		err = fmt.Errorf("count users: %w", err)
		return StandingsPage{}, err
	}

	entries := make([]StandingsEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, StandingsEntry{
			Rank:          offset + i + 1,
			UserID:        row.ID,
			Username:      row.Username,
			FantasyPoints: row.FantasyPoints,
		})
	}

	return StandingsPage{
		Page:       input.Page,
		Limit:      input.Limit,
		TotalUsers: total,
		Entries:    entries,
	}, nil
}

// RankOf computes the caller's current standing: one plus the number of
// users holding strictly more points.
func (s *LeaderboardService) RankOf(ctx context.Context, userID string) (RankView, error) {
	ctx, span := startSpan(ctx, "LeaderboardService.RankOf")
	var err error
	defer func() { endSpan(span, err) }()

	row, found, err := s.users.GetByID(ctx, userID)
	if err != nil {
		err = fmt.Errorf("load user %s: %w", userID, err)
		return RankView{}, err
	}
	if !found {
		err = fmt.Errorf("%w: user %s", ErrNotFound, userID)
		return RankView{}, err
	}

	ahead, err := s.users.CountWithMorePoints(ctx, row.FantasyPoints)
	if err != nil {
		err = fmt.Errorf("count users ahead: %w", err)
		return RankView{}, err
	}

	return RankView{
		UserID:        row.ID,
		Username:      row.Username,
		FantasyPoints: row.FantasyPoints,
		Rank:          ahead + 1,
	}, nil
}
