package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
)

func testTeam(id, userID, raceID string) fantasyteam.Team {
	captain := "norris"
	return fantasyteam.Team{
		ID:        id,
		UserID:    userID,
		RaceID:    raceID,
		DriverIDs: []string{"norris", "piastri", "leclerc", "alonso", "gasly"},
		CaptainID: &captain,
		CreatedAt: time.Now().UTC(),
	}
}

func TestTeamRepositoryRejectsSecondTeamForSameRace(t *testing.T) {
	repo := NewTeamRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testTeam("t1", "u1", "2025-r15")); err != nil {
		t.Fatalf("first Create() returned %v", err)
	}

	err := repo.Create(ctx, testTeam("t2", "u1", "2025-r15"))
	if !errors.Is(err, fantasyteam.ErrAlreadyExists) {
		t.Fatalf("second Create() = %v, want ErrAlreadyExists", err)
	}

	if err := repo.Create(ctx, testTeam("t3", "u1", "2025-r16")); err != nil {
		t.Fatalf("Create() for another race returned %v", err)
	}
	if err := repo.Create(ctx, testTeam("t4", "u2", "2025-r15")); err != nil {
		t.Fatalf("Create() for another user returned %v", err)
	}
}

func TestTeamRepositoryConcurrentDuplicates(t *testing.T) {
	repo := NewTeamRepository()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, testTeam("t"+string(rune('a'+i)), "u1", "2025-r15"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else if !errors.Is(err, fantasyteam.ErrAlreadyExists) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("%d creates succeeded, want exactly 1", created)
	}
}

func TestTeamRepositoryListByUserNewestFirst(t *testing.T) {
	repo := NewTeamRepository()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, raceID := range []string{"2025-r13", "2025-r14", "2025-r15"} {
		team := testTeam("t"+raceID, "u1", raceID)
		team.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := repo.Create(ctx, team); err != nil {
			t.Fatalf("Create(%s) returned %v", raceID, err)
		}
	}

	out, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser() returned %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("ListByUser() returned %d teams, want 3", len(out))
	}
	for i, want := range []string{"2025-r15", "2025-r14", "2025-r13"} {
		if out[i].RaceID != want {
			t.Errorf("teams[%d].RaceID = %s, want %s", i, out[i].RaceID, want)
		}
	}
}

func TestTeamRepositoryUpdatePoints(t *testing.T) {
	repo := NewTeamRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testTeam("t1", "u1", "2025-r15")); err != nil {
		t.Fatalf("Create() returned %v", err)
	}
	if err := repo.UpdatePoints(ctx, "t1", 87); err != nil {
		t.Fatalf("UpdatePoints() returned %v", err)
	}

	stored, found, err := repo.GetByUserAndRace(ctx, "u1", "2025-r15")
	if err != nil || !found {
		t.Fatalf("GetByUserAndRace() = %v found=%v", err, found)
	}
	if stored.Points != 87 {
		t.Fatalf("Points = %d, want 87", stored.Points)
	}

	if err := repo.UpdatePoints(ctx, "missing", 10); err == nil {
		t.Fatal("UpdatePoints() on unknown team succeeded")
	}
}
