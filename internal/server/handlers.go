package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canoeh/nocs/internal/models"
)

// RootResponse describes the service and its routes.
type RootResponse struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Routes  []route `json:"routes"`
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RootResponse{
		Name:    name,
		Version: s.version,
		Routes:  apiRoutes,
	})
}

// handleListOccupations serves GET /occupations?search=&page=&limit=.
// Unparseable page or limit values fall back to the defaults.
func (s *Server) handleListOccupations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.catalog.Query(r.Context(), models.ListQuery{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   queryInt(q.Get("page")),
		Limit:  queryInt(q.Get("limit")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondCached(w, r, page, s.config.Cache.ListMaxAge)
}

func (s *Server) handleGetOccupation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	occ, err := s.catalog.LookupByCode(r.Context(), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondCached(w, r, occ, s.config.Cache.DetailMaxAge)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	meta, err := s.catalog.Metadata(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondCached(w, r, meta, s.config.Cache.InfoMaxAge)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.catalog.Suggest(r.Context(), q.Get("q"), queryInt(q.Get("limit")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondCached(w, r, resp, s.config.Cache.ListMaxAge)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady loads the dataset if needed and reports 503 while it cannot be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.catalog.Loaded() {
		if err := s.catalog.Preload(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "not_ready",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Reason:    "occupation data not loaded",
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// queryInt parses a query parameter, returning 0 for missing or malformed values.
func queryInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
