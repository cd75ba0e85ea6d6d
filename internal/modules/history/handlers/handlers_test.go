package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/history"
	testingpkg "github.com/aristath/megasena/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureSource struct{}

func (fixtureSource) Name() string { return "fixtures" }

func (fixtureSource) Fetch(ctx context.Context) ([]domain.Draw, error) {
	return testingpkg.NewDrawFixtures(), nil
}

func setupRouter(t *testing.T, load bool) chi.Router {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "history")
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	service := history.NewService(history.NewRepository(db.Conn(), log), []history.Source{fixtureSource{}}, log)
	if load {
		require.NoError(t, service.Load(context.Background()))
	}

	router := chi.NewRouter()
	NewHandler(service, log).RegisterRoutes(router)
	return router
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Contains(t, body, "metadata")
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestHandleGetDraws(t *testing.T) {
	router := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/history/draws?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(12), data["total"])

	draws, ok := data["draws"].([]interface{})
	require.True(t, ok)
	require.Len(t, draws, 2)
	first := draws[0].(map[string]interface{})
	assert.Equal(t, float64(12), first["contest"])
}

func TestHandleGetDraws_InvalidLimit(t *testing.T) {
	router := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/history/draws?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetDraws_StoreUnavailable(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/history/draws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleCheck(t *testing.T) {
	router := setupRouter(t, true)

	tests := []struct {
		name      string
		numbers   string
		wantCode  int
		wantDrawn bool
	}{
		{"drawn", "52,41,33,30,5,4", http.StatusOK, true},
		{"never drawn", "1,2,3,4,5,6", http.StatusOK, false},
		{"out of range", "1,2,3,4,5,61", http.StatusBadRequest, false},
		{"too few", "1,2,3", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/history/check?numbers="+tt.numbers, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			data := decodeData(t, rec)
			assert.Equal(t, tt.wantDrawn, data["drawn"])
		})
	}
}

func TestHandleReload(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/history/reload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, true, data["reloaded"])
	assert.Equal(t, float64(12), data["draws"])
}
