package jolpica

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/gridfan/f1-fantasy/internal/platform/logging"
	"github.com/gridfan/f1-fantasy/internal/platform/resilience"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.jolpi.ca/ergast/f1"
	maxResponseSize = 4 << 20
	pageLimit       = 100
)

var errJolpicaTransient = crerr.New("jolpica transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the jolpica-f1 API, an Ergast-compatible source of F1
// schedules and race classifications. All responses are normalized to the
// usecase external types before they leave this package.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := cfg.CircuitBreaker.Normalized()

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchNextRace returns the next scheduled grand prix according to the
// provider. The provider decides what "next" means; callers must not cache
// this beyond a short TTL.
func (c *Client) FetchNextRace(ctx context.Context) (usecase.ExternalRace, error) {
	var envelope raceTableEnvelope
	if err := c.doJSON(ctx, "/current/next.json", &envelope); err != nil {
		return usecase.ExternalRace{}, fmt.Errorf("fetch next race: %w", err)
	}

	races := envelope.MRData.RaceTable.Races
	if len(races) == 0 {
		return usecase.ExternalRace{}, fmt.Errorf("%w: provider returned no upcoming race", usecase.ErrDependencyUnavailable)
	}

	return mapRace(races[0]), nil
}

// FetchSeasonSchedule returns every event of the given season. Season is a
// four digit year or "current".
func (c *Client) FetchSeasonSchedule(ctx context.Context, season string) ([]usecase.ExternalRace, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		season = "current"
	}

	path := fmt.Sprintf("/%s.json?limit=%d", season, pageLimit)
	var envelope raceTableEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule season=%s: %w", season, err)
	}

	races := envelope.MRData.RaceTable.Races
	out := make([]usecase.ExternalRace, 0, len(races))
	for _, item := range races {
		mapped := mapRace(item)
		if mapped.Round <= 0 {
			c.logger.WarnContext(ctx, "skip schedule row without a round", "season", season, "race_name", item.RaceName)
			continue
		}
		out = append(out, mapped)
	}

	return out, nil
}

// FetchRaceResults returns the final classification for one race. An empty
// slice means the provider has no results yet; that is not an error.
func (c *Client) FetchRaceResults(ctx context.Context, season string, round int) ([]usecase.ExternalDriverResult, error) {
	if round <= 0 {
		return nil, fmt.Errorf("round must be greater than zero")
	}
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("season must not be empty")
	}

	path := fmt.Sprintf("/%s/%d/results.json?limit=%d", season, round, pageLimit)
	var envelope raceTableEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch results season=%s round=%d: %w", season, round, err)
	}

	races := envelope.MRData.RaceTable.Races
	if len(races) == 0 {
		return nil, nil
	}

	results := races[0].Results
	out := make([]usecase.ExternalDriverResult, 0, len(results))
	for _, item := range results {
		mapped := mapResult(item)
		if mapped.DriverID == "" && mapped.CarNumber == "" {
			c.logger.WarnContext(ctx, "skip result row without driver identity", "season", season, "round", round)
			continue
		}
		out = append(out, mapped)
	}

	return out, nil
}

func mapRace(item raceItem) usecase.ExternalRace {
	round, _ := strconv.Atoi(strings.TrimSpace(item.Round))

	return usecase.ExternalRace{
		Season:         strings.TrimSpace(item.Season),
		Round:          round,
		Name:           strings.TrimSpace(item.RaceName),
		FirstPractice:  parseSession(item.FirstPractice),
		SecondPractice: parseSession(item.SecondPractice),
		ThirdPractice:  parseSession(item.ThirdPractice),
		Qualifying:     parseSession(item.Qualifying),
		Sprint:         parseSession(item.Sprint),
		Race:           parseSessionParts(item.Date, item.Time),
	}
}

func mapResult(item resultItem) usecase.ExternalDriverResult {
	out := usecase.ExternalDriverResult{
		DriverID:  strings.TrimSpace(item.Driver.DriverID),
		CarNumber: strings.TrimSpace(item.Number),
		Status:    strings.TrimSpace(item.Status),
	}
	if out.CarNumber == "" {
		out.CarNumber = strings.TrimSpace(item.Driver.PermanentNumber)
	}

	// positionText is numeric for classified finishers; markers such as
	// "R", "D", "W" mean the driver did not classify.
	text := strings.TrimSpace(item.PositionText)
	if text == "" {
		text = strings.TrimSpace(item.Position)
	}
	if pos, err := strconv.Atoi(text); err == nil && pos > 0 {
		out.Position = &pos
	}

	out.Retired = isRetiredStatus(out.Status)
	if item.FastestLap != nil && strings.TrimSpace(item.FastestLap.Rank) == "1" {
		out.FastestLap = true
	}

	return out
}

// isRetiredStatus reports whether a status string describes a driver who did
// not finish. "Finished" and lapped markers like "+1 Lap" count as finishes.
func isRetiredStatus(status string) bool {
	status = strings.TrimSpace(status)
	if status == "" {
		return false
	}
	if strings.EqualFold(status, "Finished") {
		return false
	}
	if strings.HasPrefix(status, "+") && strings.Contains(strings.ToLower(status), "lap") {
		return false
	}
	return true
}

func parseSession(item *sessionItem) *time.Time {
	if item == nil {
		return nil
	}
	return parseSessionParts(item.Date, item.Time)
}

func parseSessionParts(date, clock string) *time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil
	}

	clock = strings.TrimSpace(clock)
	if clock == "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil
		}
		v := parsed.UTC()
		return &v
	}

	parsed, err := time.Parse(time.RFC3339, date+"T"+clock)
	if err != nil {
		return nil
	}
	v := parsed.UTC()
	return &v
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "jolpica circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: race data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errJolpicaTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if crerr.Is(err, errJolpicaTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errJolpicaTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errJolpicaTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errJolpicaTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "jolpica request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
