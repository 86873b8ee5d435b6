package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/standings", handler.GetStandings)
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.ListMatches)))
	mux.Handle("POST /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("POST /v1/matches/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportMatches)))
	mux.Handle("GET /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMatch)))
	mux.Handle("DELETE /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteMatch)))
	mux.Handle("PUT /v1/matches/{matchID}/result", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMatchResult)))
	mux.Handle("PUT /v1/matches/{matchID}/stats", RequireAuth(verifier, http.HandlerFunc(handler.ReconcileMatchStats)))
}

func registerAuthorizedProfileRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me/profile", RequireAuth(verifier, http.HandlerFunc(handler.GetMyProfile)))
	mux.Handle("POST /v1/me/profile/setup", RequireAuth(verifier, http.HandlerFunc(handler.SetupMyProfile)))
	mux.Handle("GET /v1/me/totals", RequireAuth(verifier, http.HandlerFunc(handler.GetMyTotals)))
	mux.Handle("GET /v1/me/metrics", RequireAuth(verifier, http.HandlerFunc(handler.GetMyMetrics)))
	mux.Handle("GET /v1/me/games", RequireAuth(verifier, http.HandlerFunc(handler.GetMyGames)))
	mux.Handle("GET /v1/roster", RequireAuth(verifier, http.HandlerFunc(handler.SearchRoster)))
	mux.Handle("POST /v1/roster", RequireAuth(verifier, http.HandlerFunc(handler.AddRosterEntry)))
	mux.Handle("PUT /v1/profiles/{uid}/subs", RequireAuth(verifier, http.HandlerFunc(handler.SetSubsStatus)))
}
