package httpapi

import (
	"net/http"

	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	// MetricsHandler is mounted on GET /metrics when set.
	MetricsHandler http.Handler
	Recorder       HTTPRecorder
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.MetricsHandler)
	registerPublicRoutes(mux, handler)
	registerAuthorizedMatchRoutes(mux, handler, verifier)
	registerAuthorizedProfileRoutes(mux, handler, verifier)

	// The raw standings proxy answers its own preflight with a fixed CORS policy, so it
	// sits outside the configurable CORS middleware.
	root := http.NewServeMux()
	root.HandleFunc("/api/standings", handler.ProxyStandings)
	root.Handle("/", CORS(cfg.CORSAllowedOrigins, mux))

	return RequestTracing(RequestLogging(logger, RequestMetrics(cfg.Recorder, recoverPanic(logger, root), mux, root)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
