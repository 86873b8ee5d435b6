package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jamwil123/pool-tracker/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	board, err := h.matchService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchBoardToDTO(board))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createMatchRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	matchDate, err := parseOptionalTime(req.MatchDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Create(ctx, usecase.CreateMatchInput{
		CallerRole: role,
		Opponent:   req.Opponent,
		Location:   req.Location,
		HomeOrAway: req.HomeOrAway,
		MatchDate:  matchDate,
		Notes:      req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) UpdateMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatchResult")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateResultRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.UpdateResult(ctx, usecase.UpdateResultInput{
		CallerRole: role,
		MatchID:    matchID,
		Result:     req.Result,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update match result failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.matchService.Delete(ctx, role, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": matchID})
}

// ReconcileMatchStats replaces a match's player rows and moves the profile totals by the
// difference in one transaction.
func (h *Handler) ReconcileMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReconcileMatchStats")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req reconcileStatsRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	known, err := h.profileService.ListKnownPlayers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list known players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]usecase.ProposedStatRow, 0, len(req.PlayerStats))
	for _, row := range req.PlayerStats {
		rows = append(rows, usecase.ProposedStatRow{
			PlayerID:      row.PlayerID,
			SinglesWins:   row.SinglesWins,
			SinglesLosses: row.SinglesLosses,
			DoublesWins:   row.DoublesWins,
			DoublesLosses: row.DoublesLosses,
			SubsPaid:      row.SubsPaid,
		})
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	result, err := h.statsService.ReconcileMatchStats(ctx, usecase.ReconcileMatchStatsInput{
		CallerRole:   role,
		MatchID:      matchID,
		Rows:         rows,
		KnownPlayers: known,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reconcile match stats failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reconcileResultToDTO(result))
}

func (h *Handler) ImportMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportMatches")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !role.IsManager() {
		writeError(ctx, w, fmt.Errorf("%w: only the captain or vice-captain can import fixtures", usecase.ErrPermissionDenied))
		return
	}

	var req importMatchesRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.importService.Import(ctx, req.Games, usecase.ImportOptions{
		DryRun:    req.DryRun,
		Overwrite: req.Overwrite,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "import matches failed", "games", len(req.Games), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, importSummaryDTO{
		Created: summary.Created,
		Updated: summary.Updated,
		Skipped: summary.Skipped,
		IDs:     append([]string{}, summary.IDs...),
		DryRun:  req.DryRun,
	})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: matchDate must be RFC3339: %v", usecase.ErrInvalidInput, err)
	}
	return &parsed, nil
}

type createMatchRequest struct {
	Opponent   string  `json:"opponent" validate:"required,max=120"`
	Location   string  `json:"location" validate:"max=200"`
	HomeOrAway string  `json:"homeOrAway" validate:"omitempty,oneof=home away"`
	MatchDate  string  `json:"matchDate"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

type updateResultRequest struct {
	Result string `json:"result" validate:"required"`
}

type reconcileStatsRequest struct {
	PlayerStats []proposedStatRowRequest `json:"playerStats" validate:"dive"`
}

type proposedStatRowRequest struct {
	PlayerID      string  `json:"playerId"`
	DisplayName   string  `json:"displayName"`
	SinglesWins   float64 `json:"singlesWins"`
	SinglesLosses float64 `json:"singlesLosses"`
	DoublesWins   float64 `json:"doublesWins"`
	DoublesLosses float64 `json:"doublesLosses"`
	SubsPaid      bool    `json:"subsPaid"`
}

type importMatchesRequest struct {
	Games     []usecase.ImportGame `json:"games" validate:"required,min=1"`
	DryRun    bool                 `json:"dryRun"`
	Overwrite bool                 `json:"overwrite"`
}
