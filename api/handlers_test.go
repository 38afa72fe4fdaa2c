package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-recommender/metrics"
	"property-recommender/models"
	"property-recommender/services"
	"property-recommender/storage"
	"property-recommender/utils"
)

type recommendationBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Recommendations []struct {
			ItemID      int64   `json:"item_id"`
			HasElevator *string `json:"has_elevator"`
			ImageURL    string  `json:"imageurl"`
		} `json:"recommendations"`
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
		Count      int `json:"num_recommendations"`
		PageSize   int `json:"page_size"`
	} `json:"data"`
}

func newTestServer(t *testing.T, webURLPath string) http.Handler {
	t.Helper()

	snap := &storage.Snapshot{
		Catalog: []models.ListingRecord{
			{ID: 1, HasElevator: models.Text("True"), RoomQty: models.Text("2"), PropertyAge: models.Text("new")},
			{ID: 2, HasElevator: models.Text("False"), RoomQty: models.Text("2"), PropertyAge: models.Text("old")},
			{ID: 3, HasElevator: models.Text("True"), RoomQty: models.Text("3"), ImageURL: "https://img/3.jpg"},
		},
		Activity: []models.VisitEvent{{ItemID: 1}, {ItemID: 3}, {ItemID: 3}},
	}
	logger := utils.NewNopLogger()
	rec := services.NewRecommender(snap, services.RecommenderOptions{
		PageSizer:   services.FixedPageSize(10),
		MaxPageSize: 100,
	}, logger)
	m := metrics.New()
	return NewRouter(NewHandler(rec, m, webURLPath, logger), m, logger)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestRecommendations(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/recommendations?keywords=TRUE")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body recommendationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, StatusSuccess, body.Status)
	require.Len(t, body.Data.Recommendations, 2)
	assert.Equal(t, int64(3), body.Data.Recommendations[0].ItemID)
	assert.Equal(t, int64(1), body.Data.Recommendations[1].ItemID)
	assert.Equal(t, 1, body.Data.TotalPages)
	assert.Equal(t, 2, body.Data.Count)
	for _, r := range body.Data.Recommendations {
		assert.NotEmpty(t, r.ImageURL)
	}
	require.NotNil(t, body.Data.Recommendations[0].HasElevator)
	assert.Equal(t, "True", *body.Data.Recommendations[0].HasElevator)
}

func TestRecommendationsLocationAndPaging(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/recommendations?keywords=true&location=3&page_size=1&page=1")
	var body recommendationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data.Recommendations, 1)
	assert.Equal(t, int64(3), body.Data.Recommendations[0].ItemID)
	assert.Equal(t, 1, body.Data.PageSize)

	rr = get(t, srv, "/recommendations?keywords=true&page=9")
	body = recommendationBody{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, StatusSuccess, body.Status)
	assert.Empty(t, body.Data.Recommendations)
	assert.Equal(t, 9, body.Data.Page)
	assert.Equal(t, 1, body.Data.TotalPages)
}

func TestRecommendationsSortByPopularity(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/recommendations?sort=popularity&location=2")
	var body recommendationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data.Recommendations, 1)
	assert.Equal(t, int64(1), body.Data.Recommendations[0].ItemID)
}

func TestRecommendationsNone(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/recommendations?keywords=false")
	require.Equal(t, http.StatusOK, rr.Code)

	var body recommendationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, StatusNoRecommendations, body.Status)
	assert.Equal(t, msgNoRecommendations, body.Message)
}

func TestRecommendationsBadPageFallsBack(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/recommendations?page=abc&page_size=-4")
	require.Equal(t, http.StatusOK, rr.Code)

	var body recommendationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Page)
	assert.Equal(t, 10, body.Data.PageSize)
}

func TestMostVisited(t *testing.T) {
	srv := newTestServer(t, "")

	rr := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Status string `json:"status"`
		Data   []struct {
			ItemID     int64 `json:"item_id"`
			VisitCount int   `json:"visit_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, int64(3), body.Data[0].ItemID)
	assert.Equal(t, 2, body.Data[0].VisitCount)
}

func TestWebURLDataPassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web_url.json")
	raw := []byte("{\"urls\": [\"https://www.rightmove.co.uk\"]}\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	srv := newTestServer(t, path)
	rr := get(t, srv, "/data/web_url.json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, raw, rr.Body.Bytes())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestWebURLDataMissing(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "absent.json"))

	rr := get(t, srv, "/data/web_url.json")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, "")

	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
	get(t, srv, "/recommendations")

	rr := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "recommendation_requests_total")
	assert.Contains(t, rr.Body.String(), `route="/recommendations"`)
}

func TestPositiveInt(t *testing.T) {
	assert.Equal(t, 3, positiveInt("3", 1))
	assert.Equal(t, 1, positiveInt("0", 1))
	assert.Equal(t, 1, positiveInt("-2", 1))
	assert.Equal(t, 1, positiveInt("x", 1))
	assert.Equal(t, 0, positiveInt("", 0))
}
