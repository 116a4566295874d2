package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gridfan/f1-fantasy/internal/platform/logging"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

type Handler struct {
	teamService        *usecase.TeamService
	leaderboardService *usecase.LeaderboardService
	reconcileService   *usecase.ReconciliationService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	leaderboardService *usecase.LeaderboardService,
	reconcileService *usecase.ReconciliationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:        teamService,
		leaderboardService: leaderboardService,
		reconcileService:   reconcileService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDrivers")
	defer span.End()

	drivers, err := h.teamService.ListDrivers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list drivers failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]driverDTO, 0, len(drivers))
	for _, d := range drivers {
		items = append(items, driverDTO{
			ID:            d.ID,
			Name:          d.Name,
			Number:        d.Number,
			ConstructorID: d.ConstructorID,
			Cost:          d.Cost,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type driverDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Number        int    `json:"number"`
	ConstructorID string `json:"constructorId"`
	Cost          int64  `json:"cost"`
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, item := range validationErrs {
				fields = append(fields, item.Field())
			}
			return fmt.Errorf("%w: invalid fields: %s", usecase.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
