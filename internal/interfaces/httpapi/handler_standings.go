package httpapi

import "net/http"

const (
	proxyAllowMethods = "GET, OPTIONS"
	proxyAllowHeaders = "Content-Type, Authorization"
)

// ProxyStandings relays the scraper's answer to browsers that cannot call it directly.
func (h *Handler) ProxyStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProxyStandings")
	defer span.End()

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", proxyAllowMethods)
	w.Header().Set("Access-Control-Allow-Headers", proxyAllowHeaders)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		writeJSON(ctx, w, http.StatusMethodNotAllowed, proxyErrorBody{Error: "Method Not Allowed"})
		return
	}

	resp, err := h.standingsService.Proxy(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "standings proxy failed", "error", err)
		writeJSON(ctx, w, http.StatusBadGateway, proxyErrorBody{Error: "Bad Gateway", Message: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	table, err := h.standingsService.Get(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(table))
}

type proxyErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
