package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
	"github.com/gridfan/f1-fantasy/internal/domain/race"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	items, ok := errorObj["errors"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one error item, got %v", errorObj["errors"])
	}
	item, _ := items[0].(map[string]any)
	if got, _ := item["domain"].(string); got != "f1-fantasy" {
		t.Fatalf("unexpected error domain %v", item["domain"])
	}
}

func TestWriteErrorSanitizesServerErrors(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) string {
		t.Helper()
		var body struct {
			Error struct {
				Message string `json:"message"`
				Errors  []struct {
					Message string `json:"message"`
				} `json:"errors"`
			} `json:"error"`
		}
		if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal response body: %v", err)
		}
		if len(body.Error.Errors) != 1 || body.Error.Errors[0].Message != body.Error.Message {
			t.Fatalf("error item message diverges from envelope message: %s", rec.Body.String())
		}
		return body.Error.Message
	}

	t.Run("storage detail stays out of 500 bodies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(context.Background(), rec, errors.New("insert team t1: pq: connection refused at 10.0.0.5:5432"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if got := decode(t, rec); got != "internal server error" {
			t.Fatalf("message = %q, want generic", got)
		}
		if strings.Contains(rec.Body.String(), "pq:") {
			t.Fatalf("driver detail leaked into body: %s", rec.Body.String())
		}
	})

	t.Run("provider detail stays out of 503 bodies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := fmt.Errorf("%w: GET https://api.jolpi.ca/ergast/f1/current/next.json: dial tcp: i/o timeout", usecase.ErrDependencyUnavailable)
		writeError(context.Background(), rec, err)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
		if got := decode(t, rec); strings.Contains(got, "jolpi") || !strings.Contains(got, "retry later") {
			t.Fatalf("message = %q, want generic retry hint", got)
		}
	})

	t.Run("4xx bodies keep the violated rule", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(context.Background(), rec, fmt.Errorf("%w: total cost 110 exceeds cap 100", fantasyteam.ErrBudgetExceeded))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if got := decode(t, rec); !strings.Contains(got, "110") {
			t.Fatalf("message = %q, want the rule's values", got)
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
		wantStatus string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: page", usecase.ErrInvalidInput),
			wantCode:   http.StatusBadRequest,
			wantReason: "invalidInput",
			wantStatus: "INVALID_ARGUMENT",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: race", usecase.ErrNotFound),
			wantCode:   http.StatusNotFound,
			wantReason: "notFound",
			wantStatus: "NOT_FOUND",
		},
		{
			name:       "unauthorized",
			err:        usecase.ErrUnauthorized,
			wantCode:   http.StatusUnauthorized,
			wantReason: "unauthorized",
			wantStatus: "UNAUTHENTICATED",
		},
		{
			name:       "duplicate team",
			err:        fmt.Errorf("%w: user=u1", fantasyteam.ErrAlreadyExists),
			wantCode:   http.StatusConflict,
			wantReason: "teamAlreadyExists",
			wantStatus: "ALREADY_EXISTS",
		},
		{
			name:       "not next race",
			err:        usecase.ErrNotNextRace,
			wantCode:   http.StatusBadRequest,
			wantReason: "notNextRace",
			wantStatus: "FAILED_PRECONDITION",
		},
		{
			name:       "submission locked",
			err:        fmt.Errorf("%w: locked_at=x", race.ErrSubmissionLocked),
			wantCode:   http.StatusBadRequest,
			wantReason: "submissionLocked",
			wantStatus: "FAILED_PRECONDITION",
		},
		{
			name:       "schedule unavailable",
			err:        race.ErrScheduleUnavailable,
			wantCode:   http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
			wantStatus: "UNAVAILABLE",
		},
		{
			name:       "provider down",
			err:        usecase.ErrDependencyUnavailable,
			wantCode:   http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
			wantStatus: "UNAVAILABLE",
		},
		{
			name:       "roster violation",
			err:        fmt.Errorf("%w: total=110", fantasyteam.ErrBudgetExceeded),
			wantCode:   http.StatusBadRequest,
			wantReason: "invalidRoster",
			wantStatus: "INVALID_ARGUMENT",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantCode:   http.StatusInternalServerError,
			wantReason: "internalError",
			wantStatus: "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.HTTPStatus != tt.wantCode {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantCode)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}
