package jolpica

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridfan/f1-fantasy/internal/platform/resilience"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

const nextRacePayload = `{
  "MRData": {
    "RaceTable": {
      "season": "2025",
      "Races": [
        {
          "season": "2025",
          "round": "15",
          "raceName": "Dutch Grand Prix",
          "date": "2025-08-31",
          "time": "13:00:00Z",
          "FirstPractice": {"date": "2025-08-29", "time": "10:30:00Z"},
          "SecondPractice": {"date": "2025-08-29", "time": "14:00:00Z"},
          "ThirdPractice": {"date": "2025-08-30", "time": "09:30:00Z"},
          "Qualifying": {"date": "2025-08-30", "time": "13:00:00Z"}
        }
      ]
    }
  }
}`

const resultsPayload = `{
  "MRData": {
    "RaceTable": {
      "season": "2025",
      "Races": [
        {
          "season": "2025",
          "round": "14",
          "raceName": "Hungarian Grand Prix",
          "date": "2025-08-03",
          "Results": [
            {
              "number": "4",
              "position": "1",
              "positionText": "1",
              "status": "Finished",
              "Driver": {"driverId": "norris", "permanentNumber": "4"},
              "FastestLap": {"rank": "2"}
            },
            {
              "number": "81",
              "position": "2",
              "positionText": "2",
              "status": "Finished",
              "Driver": {"driverId": "piastri", "permanentNumber": "81"},
              "FastestLap": {"rank": "1"}
            },
            {
              "number": "18",
              "position": "19",
              "positionText": "R",
              "status": "Engine",
              "Driver": {"driverId": "stroll", "permanentNumber": "18"}
            },
            {
              "number": "24",
              "position": "17",
              "positionText": "17",
              "status": "+1 Lap",
              "Driver": {"driverId": "zhou", "permanentNumber": "24"}
            }
          ]
        }
      ]
    }
  }
}`

func newTestClient(t *testing.T, handler http.Handler, maxRetries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
}

func TestFetchNextRace(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current/next.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(nextRacePayload))
	}), 0)

	race, err := client.FetchNextRace(context.Background())
	if err != nil {
		t.Fatalf("FetchNextRace() returned %v", err)
	}

	if race.Season != "2025" || race.Round != 15 || race.Name != "Dutch Grand Prix" {
		t.Fatalf("unexpected race identity: %+v", race)
	}
	if race.FirstPractice == nil {
		t.Fatal("FirstPractice missing")
	}
	wantFP1 := time.Date(2025, 8, 29, 10, 30, 0, 0, time.UTC)
	if !race.FirstPractice.Equal(wantFP1) {
		t.Fatalf("FirstPractice = %v, want %v", race.FirstPractice, wantFP1)
	}
	if race.Sprint != nil {
		t.Fatal("Sprint should be nil when the provider omits it")
	}
	if race.Race == nil || !race.Race.Equal(time.Date(2025, 8, 31, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("Race session = %v", race.Race)
	}
}

func TestFetchRaceResultsNormalization(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025/14/results.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(resultsPayload))
	}), 0)

	results, err := client.FetchRaceResults(context.Background(), "2025", 14)
	if err != nil {
		t.Fatalf("FetchRaceResults() returned %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	byDriver := make(map[string]usecase.ExternalDriverResult, len(results))
	for _, item := range results {
		byDriver[item.DriverID] = item
	}

	winner := byDriver["norris"]
	if winner.Position == nil || *winner.Position != 1 || winner.Retired || winner.FastestLap {
		t.Fatalf("winner row mismatch: %+v", winner)
	}

	fastest := byDriver["piastri"]
	if !fastest.FastestLap {
		t.Fatalf("fastest lap not flagged: %+v", fastest)
	}

	retired := byDriver["stroll"]
	if retired.Position != nil {
		t.Fatalf("retired driver has numeric position: %+v", retired)
	}
	if !retired.Retired {
		t.Fatalf("engine failure not treated as retirement: %+v", retired)
	}

	lapped := byDriver["zhou"]
	if lapped.Retired {
		t.Fatalf("+1 Lap wrongly treated as retirement: %+v", lapped)
	}
	if lapped.Position == nil || *lapped.Position != 17 {
		t.Fatalf("lapped driver position mismatch: %+v", lapped)
	}
}

func TestFetchRaceResultsEmptyWhenNotPublished(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"MRData": {"RaceTable": {"season": "2025", "Races": []}}}`))
	}), 0)

	results, err := client.FetchRaceResults(context.Background(), "2025", 20)
	if err != nil {
		t.Fatalf("FetchRaceResults() returned %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want none", len(results))
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(nextRacePayload))
	}), 2)

	if _, err := client.FetchNextRace(context.Background()); err != nil {
		t.Fatalf("FetchNextRace() after retry returned %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("provider called %d times, want 2", got)
	}
}

func TestClientCircuitOpensAfterRepeatedFailures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}), 0)

	for i := 0; i < 2; i++ {
		if _, err := client.FetchNextRace(context.Background()); err == nil {
			t.Fatal("FetchNextRace() succeeded against a failing provider")
		}
	}

	_, err := client.FetchNextRace(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("FetchNextRace() with open circuit = %v, want ErrDependencyUnavailable", err)
	}
}
