package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	nocerrors "github.com/canoeh/nocs/internal/errors"
)

// route describes an endpoint for the GET / listing.
type route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var apiRoutes = []route{
	{http.MethodGet, "/occupations", "List occupations; query params search, page, limit"},
	{http.MethodGet, "/occupations/{code}", "Get one occupation by NOC code"},
	{http.MethodGet, "/info", "Dataset metadata"},
	{http.MethodGet, "/suggest", "Typo-tolerant title suggestions; query params q, limit"},
	{http.MethodGet, "/api/nocs", "Alias of /occupations"},
	{http.MethodGet, "/api/nocs/{code}", "Alias of /occupations/{code}"},
	{http.MethodGet, "/api/info", "Alias of /info"},
	{http.MethodGet, "/health", "Liveness probe"},
	{http.MethodGet, "/ready", "Readiness probe; loads the dataset if needed"},
	{http.MethodGet, "/metrics", "Prometheus metrics"},
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.panicRecoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, nocerrors.New(nocerrors.ErrCodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, nocerrors.New(nocerrors.ErrCodeMethodNotAllowed, "method not allowed"))
	})

	// System endpoints (no rate limiting)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Use(middleware.Compress(5))

		r.Get("/", s.handleRoot)
		r.Get("/occupations", s.handleListOccupations)
		r.Get("/occupations/{code}", s.handleGetOccupation)
		r.Get("/info", s.handleInfo)
		r.Get("/suggest", s.handleSuggest)

		r.Route("/api", func(r chi.Router) {
			r.Get("/nocs", s.handleListOccupations)
			r.Get("/nocs/{code}", s.handleGetOccupation)
			r.Get("/info", s.handleInfo)
			r.Get("/suggest", s.handleSuggest)
		})
	})
	return r
}
