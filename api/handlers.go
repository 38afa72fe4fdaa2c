package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/goccy/go-json"

	"property-recommender/metrics"
	"property-recommender/models"
	"property-recommender/services"
	"property-recommender/utils"
)

// Response statuses.
const (
	StatusSuccess           = "success"
	StatusNoRecommendations = "no_recommendations"
	StatusNoProperties      = "no_properties"
	StatusError             = "error"
)

const (
	msgNoRecommendations = "No recommendations found for the given criteria."
	msgNoProperties      = "No properties found."
)

// Response is the JSON envelope of every API endpoint except the static passthrough.
type Response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler serves the recommendation API.
type Handler struct {
	recommender *services.Recommender
	metrics     *metrics.Metrics
	logger      *utils.Logger
	webURLPath  string
}

// NewHandler wires the handler to a loaded recommender.
func NewHandler(rec *services.Recommender, m *metrics.Metrics, webURLPath string, logger *utils.Logger) *Handler {
	m.CatalogListings.Set(float64(len(rec.Snapshot().Catalog)))
	m.VisitedListings.Set(float64(len(rec.Index())))
	return &Handler{recommender: rec, metrics: m, logger: logger, webURLPath: webURLPath}
}

// Recommendations handles GET /recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := models.QuerySpec{
		Keywords: q.Get("keywords"),
		Location: q.Get("location"),
		Page:     positiveInt(q.Get("page"), 1),
		PageSize: positiveInt(q.Get("page_size"), 0),
		SortKey:  models.SortKey(q.Get("sort")),
	}
	if spec.SortKey != "" {
		spec.SortKey = services.ParseSortKey(string(spec.SortKey))
	}

	page := h.recommender.Recommend(spec)
	switch {
	case page.NoRecommendations():
		h.metrics.ObserveRecommendation(metrics.OutcomeNoRecommendations, 0)
		respondJSON(w, http.StatusOK, &Response{Status: StatusNoRecommendations, Message: msgNoRecommendations}, h.logger)
		return
	case page.Count == 0:
		h.metrics.ObserveRecommendation(metrics.OutcomeEmptyPage, page.PageSize)
	default:
		h.metrics.ObserveRecommendation(metrics.OutcomeResults, page.PageSize)
	}

	respondJSON(w, http.StatusOK, &Response{Status: StatusSuccess, Data: page}, h.logger)
}

// MostVisited handles GET /, listing every visited property by visit count.
func (h *Handler) MostVisited(w http.ResponseWriter, r *http.Request) {
	popular := h.recommender.MostVisited()
	if len(popular) == 0 {
		respondJSON(w, http.StatusOK, &Response{Status: StatusNoProperties, Message: msgNoProperties}, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, &Response{Status: StatusSuccess, Data: popular}, h.logger)
}

// WebURLData handles GET /data/web_url.json. The file is read per request and
// served byte for byte.
func (h *Handler) WebURLData(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.webURLPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		respondError(w, status, "web url data unavailable", err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("[api] Writing web url data: %v", err)
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &Response{Status: "ok"}, h.logger)
}

func respondJSON(w http.ResponseWriter, status int, resp *Response, logger *utils.Logger) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("[api] Failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Warn("[api] Writing response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error, logger *utils.Logger) {
	if err != nil {
		logger.Error("[api] %s: %v", message, err)
	}
	respondJSON(w, status, &Response{Status: StatusError, Message: message}, logger)
}

// positiveInt parses s, returning fallback for anything that is not a positive integer.
func positiveInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
