package httpapi

import (
	"net/http"
	"strings"

	"github.com/jamwil123/pool-tracker/internal/usecase"
)

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, errMissingPrincipal)
		return
	}

	item, err := h.profileService.GetByUID(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(item))
}

// SetupMyProfile claims a roster entry for the calling account.
func (h *Handler) SetupMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetupMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, errMissingPrincipal)
		return
	}

	var req setupProfileRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.profileService.SetupProfile(ctx, usecase.SetupProfileInput{
		UID:      principal.UserID,
		Email:    principal.Email,
		RosterID: req.RosterID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "setup profile failed", "user_id", principal.UserID, "roster_id", req.RosterID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(item))
}

func (h *Handler) GetMyTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTotals")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, errMissingPrincipal)
		return
	}

	totals, err := h.playerStatsService.UserTotals(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user totals failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userTotalsToDTO(totals))
}

func (h *Handler) GetMyMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyMetrics")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, errMissingPrincipal)
		return
	}

	metrics, err := h.playerStatsService.PlayerMetrics(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player metrics failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerMetricsDTO{
		FinishedMatches:      metrics.FinishedMatches,
		MatchesPlayed:        metrics.MatchesPlayed,
		SelectionRatePct:     metrics.SelectionRatePct,
		FrameWins:            metrics.FrameWins,
		FrameLosses:          metrics.FrameLosses,
		FrameWinRatePct:      metrics.FrameWinRatePct,
		FramesWonPerMatch:    metrics.FramesWonPerMatch,
		SinglesWinRatePct:    metrics.SinglesWinRatePct,
		DoublesWinRatePct:    metrics.DoublesWinRatePct,
		Last5FrameWinRatePct: metrics.Last5FrameWinRatePct,
		ContributionSharePct: metrics.ContributionSharePct,
	})
}

func (h *Handler) GetMyGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyGames")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, errMissingPrincipal)
		return
	}

	games, err := h.playerStatsService.GameTotals(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game totals failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameTotalDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameTotalDTO{
			MatchID:   g.MatchID,
			Opponent:  g.Opponent,
			MatchDate: formatOptionalTime(g.MatchDate),
			Result:    string(g.Result),
			Wins:      g.Wins,
			Losses:    g.Losses,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SearchRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchRoster")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	entries, err := h.profileService.SearchRoster(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "search roster failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, rosterEntryToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddRosterEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddRosterEntry")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addRosterEntryRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.profileService.AddRosterEntry(ctx, usecase.AddRosterEntryInput{
		CallerRole:  role,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add roster entry failed", "display_name", req.DisplayName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rosterEntryToDTO(entry))
}

func (h *Handler) SetSubsStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSubsStatus")
	defer span.End()

	_, role, err := h.callerRole(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setSubsStatusRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	uid := strings.TrimSpace(r.PathValue("uid"))
	if err := h.profileService.SetSubsStatus(ctx, role, uid, req.SubsStatus); err != nil {
		h.logger.WarnContext(ctx, "set subs status failed", "uid", uid, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"uid": uid, "subsStatus": req.SubsStatus})
}

type setupProfileRequest struct {
	RosterID string `json:"rosterId" validate:"required"`
}

type addRosterEntryRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=80"`
	Role        string `json:"role"`
}

type setSubsStatusRequest struct {
	SubsStatus string `json:"subsStatus" validate:"required"`
}
