package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

type createTeamRequest struct {
	RaceID    string   `json:"raceId" validate:"required"`
	DriverIDs []string `json:"driverIds" validate:"required,len=5"`
	CaptainID *string  `json:"captainId"`
}

type teamDTO struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	RaceID    string   `json:"raceId"`
	DriverIDs []string `json:"driverIds"`
	CaptainID *string  `json:"captainId,omitempty"`
	Points    int      `json:"points"`
	Locked    bool     `json:"locked"`
	TotalCost *int64   `json:"totalCost,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no authenticated principal", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.teamService.CreateTeam(ctx, usecase.CreateTeamInput{
		UserID:    principal.UserID,
		RaceID:    strings.TrimSpace(req.RaceID),
		DriverIDs: req.DriverIDs,
		CaptainID: req.CaptainID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed",
			"user_id", principal.UserID, "race_id", req.RaceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := teamToDTO(view.Team)
	dto.TotalCost = &view.TotalCost
	writeSuccess(ctx, w, http.StatusCreated, dto)
}

func (h *Handler) GetTeamForRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamForRace")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no authenticated principal", usecase.ErrUnauthorized))
		return
	}

	raceID := strings.TrimSpace(r.PathValue("raceID"))
	team, err := h.teamService.GetTeamForRace(ctx, principal.UserID, raceID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTeams")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no authenticated principal", usecase.ErrUnauthorized))
		return
	}

	teams, err := h.teamService.ListMyTeams(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, team := range teams {
		items = append(items, teamToDTO(team))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func teamToDTO(team fantasyteam.Team) teamDTO {
	return teamDTO{
		ID:        team.ID,
		UserID:    team.UserID,
		RaceID:    team.RaceID,
		DriverIDs: team.DriverIDs,
		CaptainID: team.CaptainID,
		Points:    team.Points,
		Locked:    team.Locked,
		CreatedAt: team.CreatedAt.UTC().Format(time.RFC3339),
	}
}
