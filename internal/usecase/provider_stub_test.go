package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

// stubProvider is an in-memory RaceDataProvider. Results are keyed by
// "season-round" so tests can publish and correct per race.
type stubProvider struct {
	mu sync.Mutex

	next     usecase.ExternalRace
	nextErr  error
	schedule []usecase.ExternalRace

	results    map[string][]usecase.ExternalDriverResult
	resultsErr error

	nextCalls atomic.Int32
}

func newStubProvider() *stubProvider {
	return &stubProvider{results: make(map[string][]usecase.ExternalDriverResult)}
}

func (p *stubProvider) FetchNextRace(_ context.Context) (usecase.ExternalRace, error) {
	p.nextCalls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nextErr != nil {
		return usecase.ExternalRace{}, p.nextErr
	}
	return p.next, nil
}

func (p *stubProvider) FetchSeasonSchedule(_ context.Context, season string) ([]usecase.ExternalRace, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]usecase.ExternalRace, 0, len(p.schedule))
	for _, item := range p.schedule {
		if item.Season == season {
			out = append(out, item)
		}
	}
	return out, nil
}

func (p *stubProvider) FetchRaceResults(_ context.Context, season string, round int) ([]usecase.ExternalDriverResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resultsErr != nil {
		return nil, p.resultsErr
	}
	return p.results[fmt.Sprintf("%s-%d", season, round)], nil
}

func (p *stubProvider) publishResults(season string, round int, results []usecase.ExternalDriverResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[fmt.Sprintf("%s-%d", season, round)] = results
}

func testDrivers() []driver.Driver {
	return []driver.Driver{
		{ID: "ver", Name: "Max Verstappen", Number: 1, ConstructorID: "red_bull", Cost: 30},
		{ID: "nor", Name: "Lando Norris", Number: 4, ConstructorID: "mclaren", Cost: 28},
		{ID: "lec", Name: "Charles Leclerc", Number: 16, ConstructorID: "ferrari", Cost: 24},
		{ID: "str", Name: "Lance Stroll", Number: 18, ConstructorID: "aston_martin", Cost: 9},
		{ID: "bea", Name: "Oliver Bearman", Number: 87, ConstructorID: "haas", Cost: 7},
		{ID: "bor", Name: "Gabriel Bortoleto", Number: 5, ConstructorID: "sauber", Cost: 6},
		{ID: "gas", Name: "Pierre Gasly", Number: 10, ConstructorID: "alpine", Cost: 10},
	}
}

func timePtr(v time.Time) *time.Time { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
