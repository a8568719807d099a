package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/gotourney/internal/api"
	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/pipeline"
	"github.com/jonesrussell/gotourney/internal/storage"
)

type fakeStore struct {
	pingFunc              func(ctx context.Context) error
	listFunc              func(ctx context.Context, filter storage.ListFilter) ([]domain.Tournament, int, error)
	getByIDFunc           func(ctx context.Context, id int64) (*domain.Tournament, error)
	searchFunc            func(ctx context.Context, term string, limit int) ([]domain.Tournament, error)
	sportCountsFunc       func(ctx context.Context) ([]domain.SportCount, error)
	levelCountsFunc       func(ctx context.Context) ([]domain.LevelCount, error)
	statisticsFunc        func(ctx context.Context) (*storage.Statistics, error)
	countBySportLevelFunc func(ctx context.Context, sport, level string) (int, *time.Time, error)
	listBySportLevelFunc  func(ctx context.Context, sport, level string, limit int) ([]domain.Tournament, error)
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingFunc != nil {
		return f.pingFunc(ctx)
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter storage.ListFilter) ([]domain.Tournament, int, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*domain.Tournament, error) {
	if f.getByIDFunc != nil {
		return f.getByIDFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) Search(ctx context.Context, term string, limit int) ([]domain.Tournament, error) {
	if f.searchFunc != nil {
		return f.searchFunc(ctx, term, limit)
	}
	return nil, nil
}

func (f *fakeStore) SportCounts(ctx context.Context) ([]domain.SportCount, error) {
	if f.sportCountsFunc != nil {
		return f.sportCountsFunc(ctx)
	}
	return nil, nil
}

func (f *fakeStore) LevelCounts(ctx context.Context) ([]domain.LevelCount, error) {
	if f.levelCountsFunc != nil {
		return f.levelCountsFunc(ctx)
	}
	return nil, nil
}

func (f *fakeStore) GetStatistics(ctx context.Context) (*storage.Statistics, error) {
	if f.statisticsFunc != nil {
		return f.statisticsFunc(ctx)
	}
	return &storage.Statistics{}, nil
}

func (f *fakeStore) CountBySportLevel(ctx context.Context, sport, level string) (int, *time.Time, error) {
	if f.countBySportLevelFunc != nil {
		return f.countBySportLevelFunc(ctx, sport, level)
	}
	return 0, nil, nil
}

func (f *fakeStore) ListBySportLevel(ctx context.Context, sport, level string, limit int) ([]domain.Tournament, error) {
	if f.listBySportLevelFunc != nil {
		return f.listBySportLevelFunc(ctx, sport, level, limit)
	}
	return nil, nil
}

type fakeDiscoverer struct {
	runForPairFunc func(ctx context.Context, sport, level string) (*pipeline.Result, error)
	calls          int
}

func (f *fakeDiscoverer) RunForPair(ctx context.Context, sport, level string) (*pipeline.Result, error) {
	f.calls++
	if f.runForPairFunc != nil {
		return f.runForPairFunc(ctx, sport, level)
	}
	return &pipeline.Result{}, nil
}

func setupRouter(t *testing.T, store api.TournamentStore, discoverer api.Discoverer) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := config.PipelineConfig{
		Sports:      []string{"badminton", "tennis"},
		Levels:      []string{"national"},
		LocalLevels: []string{"local"},
	}
	handler := api.NewHandler(store, discoverer, cfg, "test", logger.NewNoOp())

	router := gin.New()
	api.SetupRoutes(router, handler)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()

	req, reqErr := http.NewRequestWithContext(t.Context(), method, target, http.NoBody)
	if reqErr != nil {
		t.Fatalf("failed to create request: %v", reqErr)
	}

	router.ServeHTTP(w, req)

	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) api.Response {
	t.Helper()

	var resp api.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return resp
}

func TestHealth_DatabaseDown(t *testing.T) {
	store := &fakeStore{
		pingFunc: func(_ context.Context) error {
			return errors.New("connection refused")
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/health")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestHealth_OK(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestListTournaments_HidesPastByDefault(t *testing.T) {
	futureYear := time.Now().Year() + 1
	store := &fakeStore{
		listFunc: func(_ context.Context, _ storage.ListFilter) ([]domain.Tournament, int, error) {
			return []domain.Tournament{
				{ID: 1, Name: "State Open 2020", DateInfo: []string{"March 2020"}},
				{ID: 2, Name: "National Cup", DateInfo: []string{"June " + strconv.Itoa(futureYear)}},
			}, 2, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want slice", resp.Data)
	}
	if len(data) != 1 {
		t.Errorf("visible tournaments = %d, want 1", len(data))
	}
	if resp.TotalCount == nil || *resp.TotalCount != 2 {
		t.Errorf("total_count = %v, want 2", resp.TotalCount)
	}
}

func TestListTournaments_ShowPast(t *testing.T) {
	store := &fakeStore{
		listFunc: func(_ context.Context, _ storage.ListFilter) ([]domain.Tournament, int, error) {
			return []domain.Tournament{
				{ID: 1, Name: "State Open 2020", DateInfo: []string{"March 2020"}},
			}, 1, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments?show_past=true")

	resp := decodeResponse(t, w)
	data, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want slice", resp.Data)
	}
	if len(data) != 1 {
		t.Errorf("visible tournaments = %d, want 1", len(data))
	}
}

func TestListTournaments_FilterPassthrough(t *testing.T) {
	var captured storage.ListFilter

	store := &fakeStore{
		listFunc: func(_ context.Context, filter storage.ListFilter) ([]domain.Tournament, int, error) {
			captured = filter
			return nil, 0, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet,
		"/api/v1/tournaments?sport=badminton&level=national&min_confidence=0.8&skip=10&limit=200")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured.Sport != "badminton" {
		t.Errorf("sport = %q, want %q", captured.Sport, "badminton")
	}
	if captured.Level != "national" {
		t.Errorf("level = %q, want %q", captured.Level, "national")
	}
	if captured.MinConfidence == nil || *captured.MinConfidence != 0.8 {
		t.Errorf("min_confidence = %v, want 0.8", captured.MinConfidence)
	}
	if captured.Offset != 10 {
		t.Errorf("offset = %d, want 10", captured.Offset)
	}
	if captured.Limit != 100 {
		t.Errorf("limit = %d, want clamp to 100", captured.Limit)
	}
}

func TestListTournaments_InvalidMinConfidence(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	for _, raw := range []string{"abc", "-0.1", "1.5"} {
		w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments?min_confidence="+raw)
		if w.Code != http.StatusBadRequest {
			t.Errorf("min_confidence=%q: status = %d, want %d", raw, w.Code, http.StatusBadRequest)
		}
	}
}

func TestSearchTournaments_TermTooShort(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments/search?q=a")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSearchTournaments_ReturnsSummaries(t *testing.T) {
	store := &fakeStore{
		searchFunc: func(_ context.Context, term string, limit int) ([]domain.Tournament, error) {
			if term != "open" {
				t.Errorf("term = %q, want %q", term, "open")
			}
			if limit != 20 {
				t.Errorf("limit = %d, want default 20", limit)
			}
			return []domain.Tournament{
				{ID: 7, Name: "District Open", Sport: "badminton", Level: "district", ConfidenceScore: 0.9},
			}, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments/search?q=open")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if resp.TotalCount == nil || *resp.TotalCount != 1 {
		t.Errorf("total_count = %v, want 1", resp.TotalCount)
	}
}

func TestGetTournament_BadID(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments/abc")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetTournament_NotFound(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments/99")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetTournament_Found(t *testing.T) {
	store := &fakeStore{
		getByIDFunc: func(_ context.Context, id int64) (*domain.Tournament, error) {
			return &domain.Tournament{ID: id, Name: "National Cup"}, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tournaments/42")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Error("success = false, want true")
	}
}

func TestListSports_MergesConfiguredAndStored(t *testing.T) {
	store := &fakeStore{
		sportCountsFunc: func(_ context.Context) ([]domain.SportCount, error) {
			return []domain.SportCount{
				{Sport: "tennis", TournamentCount: 4, AvgConfidence: 0.81},
				{Sport: "chess", TournamentCount: 2, AvgConfidence: 0.75},
			}, nil
		},
	}
	router := setupRouter(t, store, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/sports")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want slice", resp.Data)
	}

	// Configured sports first (badminton with zero count, tennis with its
	// stored count), then database-only sports.
	if len(data) != 3 {
		t.Fatalf("sports = %d, want 3", len(data))
	}

	first, ok := data[0].(map[string]any)
	if !ok {
		t.Fatalf("entry is %T, want object", data[0])
	}
	if first["sport"] != "badminton" {
		t.Errorf("first sport = %v, want badminton", first["sport"])
	}

	last, ok := data[2].(map[string]any)
	if !ok {
		t.Fatalf("entry is %T, want object", data[2])
	}
	if last["sport"] != "chess" {
		t.Errorf("last sport = %v, want chess", last["sport"])
	}
}

func TestDiscover_MissingParams(t *testing.T) {
	router := setupRouter(t, &fakeStore{}, &fakeDiscoverer{})

	w := doRequest(t, router, http.MethodPost, "/api/v1/tournaments/discover?sport=badminton")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDiscover_ServesFromDatabase(t *testing.T) {
	updated := time.Now().UTC()
	store := &fakeStore{
		countBySportLevelFunc: func(_ context.Context, _, _ string) (int, *time.Time, error) {
			return 3, &updated, nil
		},
		listBySportLevelFunc: func(_ context.Context, _, _ string, _ int) ([]domain.Tournament, error) {
			return []domain.Tournament{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	discoverer := &fakeDiscoverer{}
	router := setupRouter(t, store, discoverer)

	w := doRequest(t, router, http.MethodPost, "/api/v1/tournaments/discover?sport=badminton&level=national")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if discoverer.calls != 0 {
		t.Errorf("pipeline runs = %d, want 0 when data exists", discoverer.calls)
	}

	resp := decodeResponse(t, w)
	if resp.TotalCount == nil || *resp.TotalCount != 3 {
		t.Errorf("total_count = %v, want 3", resp.TotalCount)
	}
}

func TestDiscover_RunsPipelineWhenEmpty(t *testing.T) {
	store := &fakeStore{
		listBySportLevelFunc: func(_ context.Context, _, _ string, _ int) ([]domain.Tournament, error) {
			return []domain.Tournament{{ID: 1}}, nil
		},
	}
	discoverer := &fakeDiscoverer{}
	router := setupRouter(t, store, discoverer)

	w := doRequest(t, router, http.MethodPost, "/api/v1/tournaments/discover?sport=badminton&level=national")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if discoverer.calls != 1 {
		t.Errorf("pipeline runs = %d, want 1", discoverer.calls)
	}
}

func TestDiscover_ForceRefreshBypassesCache(t *testing.T) {
	store := &fakeStore{
		countBySportLevelFunc: func(_ context.Context, _, _ string) (int, *time.Time, error) {
			return 5, nil, nil
		},
	}
	discoverer := &fakeDiscoverer{}
	router := setupRouter(t, store, discoverer)

	doRequest(t, router, http.MethodPost,
		"/api/v1/tournaments/discover?sport=badminton&level=national&force_refresh=true")

	if discoverer.calls != 1 {
		t.Errorf("pipeline runs = %d, want 1 with force_refresh", discoverer.calls)
	}
}

func TestDiscover_PipelineFailureKeepsEnvelope(t *testing.T) {
	discoverer := &fakeDiscoverer{
		runForPairFunc: func(_ context.Context, _, _ string) (*pipeline.Result, error) {
			return nil, errors.New("no search results")
		},
	}
	router := setupRouter(t, &fakeStore{}, discoverer)

	w := doRequest(t, router, http.MethodPost, "/api/v1/tournaments/discover?sport=badminton&level=national")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d on pipeline failure", w.Code, http.StatusOK)
	}

	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("success = true, want false on pipeline failure")
	}
}
