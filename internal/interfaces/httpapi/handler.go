package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

type Handler struct {
	matchService       *usecase.MatchService
	statsService       *usecase.StatsService
	importService      *usecase.ImportService
	profileService     *usecase.ProfileService
	playerStatsService *usecase.PlayerStatsService
	standingsService   *usecase.StandingsService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	statsService *usecase.StatsService,
	importService *usecase.ImportService,
	profileService *usecase.ProfileService,
	playerStatsService *usecase.PlayerStatsService,
	standingsService *usecase.StandingsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:       matchService,
		statsService:       statsService,
		importService:      importService,
		profileService:     profileService,
		playerStatsService: playerStatsService,
		standingsService:   standingsService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// callerRole resolves the role of the authenticated caller from their profile.
func (h *Handler) callerRole(ctx context.Context) (string, profile.Role, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return "", "", fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}

	role, err := h.profileService.RoleOf(ctx, principal.UserID)
	if err != nil {
		return "", "", err
	}
	return principal.UserID, role, nil
}

func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, out any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, out)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
