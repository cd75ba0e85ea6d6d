package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/aristath/megasena/internal/modules/scoring"
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
	historyDB, cleanupHistory := testingpkg.NewTestDB(t, "history")
	t.Cleanup(cleanupHistory)
	auditDB, cleanupAudit := testingpkg.NewTestDB(t, "audit")
	t.Cleanup(cleanupAudit)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	service := history.NewService(history.NewRepository(historyDB.Conn(), log), []history.Source{fixtureSource{}}, log)
	if load {
		require.NoError(t, service.Load(context.Background()))
	}

	cfg := batch.DefaultConfig()
	cfg.DefaultQuantity = 4
	classifier := quadrants.New()
	repo := batch.NewRepository(auditDB.Conn(), log)
	orch := batch.NewOrchestrator(
		cfg,
		service,
		classifier,
		frequency.NewAnalyzer(cfg.Frequency, classifier, log),
		scoring.NewEngine(scoring.DefaultConfig()),
		repo,
		log,
	)

	router := chi.NewRouter()
	NewHandler(orch, repo, log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	metadata, ok := body["metadata"].(map[string]interface{})
	require.True(t, ok)
	return data, metadata
}

func TestHandleGenerate(t *testing.T) {
	router := setupRouter(t, true)

	rec := do(router, http.MethodPost, "/games/generate", `{"quantity":3,"options":{"randomSeed":9,"timeout":"5s"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, metadata := decodeBody(t, rec)
	assert.Equal(t, false, metadata["partial"])
	assert.NotContains(t, metadata, "notice")
	assert.Equal(t, "complete", data["status"])
	assert.Equal(t, float64(9), data["seed"])
	assert.NotEmpty(t, data["generalAnalysis"])

	games, ok := data["games"].([]interface{})
	require.True(t, ok)
	assert.Len(t, games, 3)
}

func TestHandleGenerate_DefaultQuantity(t *testing.T) {
	router := setupRouter(t, true)

	rec := do(router, http.MethodPost, "/games/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, _ := decodeBody(t, rec)
	assert.Equal(t, float64(4), data["requested"])
	assert.Len(t, data["games"], 4)
}

func TestHandleGenerate_BadRequests(t *testing.T) {
	router := setupRouter(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"zero quantity", `{"quantity":0}`},
		{"above cap", `{"quantity":11,"options":{"maxQuantity":10}}`},
		{"invalid sampling", `{"quantity":2,"options":{"sampling":"bogus"}}`},
		{"invalid timeout", `{"quantity":2,"options":{"timeout":"soon"}}`},
		{"malformed body", `{"quantity":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/games/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleGenerate_StoreUnavailable(t *testing.T) {
	router := setupRouter(t, false)

	rec := do(router, http.MethodPost, "/games/generate", `{"quantity":2}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again later")
}

func TestHandleGenerate_PartialNotice(t *testing.T) {
	router := setupRouter(t, true)

	// A six-number pool allows exactly one combination, so the second slot stays unmet
	exclude := make([]string, 0, domain.MaxNumber)
	for n := 9; n <= domain.MaxNumber; n++ {
		exclude = append(exclude, strconv.Itoa(n))
	}
	exclude = append(exclude, "4", "5")
	body := `{"quantity":2,"options":{"randomSeed":1,"attemptBudgetPerSlot":20,"exclude":[` + strings.Join(exclude, ",") + `]}}`
	rec := do(router, http.MethodPost, "/games/generate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	data, metadata := decodeBody(t, rec)
	assert.Equal(t, true, metadata["partial"])
	assert.Contains(t, metadata["notice"], "generation exhausted")
	assert.Equal(t, "partial_failure", data["status"])
	assert.Equal(t, float64(1), data["unmetSlots"])
	assert.Len(t, data["games"], 1)
}

func TestHandleGenerate_Timeout(t *testing.T) {
	router := setupRouter(t, true)

	rec := do(router, http.MethodPost, "/games/generate", `{"quantity":2,"options":{"randomSeed":1,"timeout":"1ns"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, metadata := decodeBody(t, rec)
	assert.Equal(t, true, metadata["partial"])
	assert.Contains(t, metadata["notice"], "generation exhausted")
	assert.Equal(t, "partial_failure", data["status"])
	assert.Equal(t, float64(2), data["unmetSlots"])

	rec = do(router, http.MethodPost, "/games/generate", `{"quantity":2,"options":{"timeout":"-"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid timeout")

	rec = do(router, http.MethodPost, "/games/generate", `{"quantity":2,"options":{"timeout":"-1s"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatches(t *testing.T) {
	router := setupRouter(t, true)

	rec := do(router, http.MethodPost, "/games/generate", `{"quantity":2,"options":{"randomSeed":3}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	generated, _ := decodeBody(t, rec)
	id, ok := generated["id"].(string)
	require.True(t, ok)

	rec = do(router, http.MethodGet, "/games/batches?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeBody(t, rec)
	assert.Equal(t, float64(1), data["count"])
	batches := data["batches"].([]interface{})
	assert.Equal(t, id, batches[0].(map[string]interface{})["id"])

	rec = do(router, http.MethodGet, "/games/batches/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ := decodeBody(t, rec)
	assert.Equal(t, generated["games"], stored["games"])
	assert.Equal(t, generated["generalAnalysis"], stored["generalAnalysis"])
}

func TestHandleBatches_Errors(t *testing.T) {
	router := setupRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/games/batches?limit=-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/games/batches/unknown", "").Code)
}
