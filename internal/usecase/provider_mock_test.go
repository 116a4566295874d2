package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/gridfan/f1-fantasy/internal/infrastructure/repository/memory"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchNextRace(ctx context.Context) (usecase.ExternalRace, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.ExternalRace), args.Error(1)
}

func (m *mockProvider) FetchSeasonSchedule(ctx context.Context, season string) ([]usecase.ExternalRace, error) {
	args := m.Called(ctx, season)
	if out := args.Get(0); out != nil {
		return out.([]usecase.ExternalRace), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) FetchRaceResults(ctx context.Context, season string, round int) ([]usecase.ExternalDriverResult, error) {
	args := m.Called(ctx, season, round)
	if out := args.Get(0); out != nil {
		return out.([]usecase.ExternalDriverResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRefreshScheduleQueriesRequestedSeason(t *testing.T) {
	provider := &mockProvider{}
	provider.
		On("FetchSeasonSchedule", mock.Anything, "2024").
		Return([]usecase.ExternalRace{{Season: "2024", Round: 1, Name: "Bahrain Grand Prix"}}, nil).
		Once()

	races := memory.NewRaceRepository()
	svc := usecase.NewReconciliationService(
		races,
		memory.NewTeamRepository(),
		memory.NewDriverRepository(),
		memory.NewUserRepository(),
		provider,
		nil,
		0,
		0,
	)

	if err := svc.RefreshSchedule(context.Background(), "2024"); err != nil {
		t.Fatalf("RefreshSchedule() error = %v", err)
	}

	if _, found, err := races.GetByID(context.Background(), "2024-r01"); err != nil || !found {
		t.Fatalf("expected round stored: found=%t err=%v", found, err)
	}
	provider.AssertExpectations(t)
}

func TestRefreshScheduleSkipsMalformedRows(t *testing.T) {
	provider := &mockProvider{}
	provider.
		On("FetchSeasonSchedule", mock.Anything, "2024").
		Return([]usecase.ExternalRace{
			{Season: "2024", Round: 0, Name: "Phantom Grand Prix"},
			{Season: "nope", Round: 2, Name: "Broken Grand Prix"},
			{Season: "2024", Round: 3, Name: "Australian Grand Prix"},
		}, nil).
		Once()

	races := memory.NewRaceRepository()
	svc := usecase.NewReconciliationService(
		races,
		memory.NewTeamRepository(),
		memory.NewDriverRepository(),
		memory.NewUserRepository(),
		provider,
		nil,
		0,
		0,
	)

	if err := svc.RefreshSchedule(context.Background(), "2024"); err != nil {
		t.Fatalf("RefreshSchedule() error = %v", err)
	}

	if _, found, _ := races.GetByID(context.Background(), "2024-r03"); !found {
		t.Fatal("expected well-formed round stored")
	}
	if _, found, _ := races.GetByID(context.Background(), "2024-r00"); found {
		t.Fatal("expected malformed round dropped")
	}
	provider.AssertExpectations(t)
}
