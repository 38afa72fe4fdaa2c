package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"property-recommender/metrics"
	"property-recommender/utils"
)

// NewRouter builds the chi router for the recommendation service.
func NewRouter(h *Handler, m *metrics.Metrics, logger *utils.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(m, logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/", h.MostVisited)
	r.Get("/recommendations", h.Recommendations)
	r.Get("/data/web_url.json", h.WebURLData)
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}

// requestLogger logs each request and records its duration by route pattern.
func requestLogger(m *metrics.Metrics, logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			elapsed := time.Since(start)
			m.ObserveRequest(r.Method, route, status, elapsed)
			logger.Debug("[api] %s %s -> %d in %v (request %s)",
				r.Method, r.URL.RequestURI(), status, elapsed, chimiddleware.GetReqID(r.Context()))
		})
	}
}
