package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"housecare-data/internal/domain"
	"housecare-data/internal/engine"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memKV 测试用内存缓存
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *memKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", errNotFound{}
}

func (f *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *memKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *memKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	return nil, nil
}

type errNotFound struct{}

func (errNotFound) Error() string { return "cache miss" }

type testEnv struct {
	router   *Router
	houses   *repository.MemoryHousesRepository
	comps    *repository.MemoryComponentsRepository
	recs     *repository.MemoryRecommendationsRepository
	tenantID string
	houseID  string
}

func setupTestRouter(t *testing.T) *testEnv {
	logger := zap.NewNop()
	houses := repository.NewMemoryHousesRepository()
	comps := repository.NewMemoryComponentsRepository()
	recs := repository.NewMemoryRecommendationsRepository()
	customers := repository.NewMemoryCustomersRepository()
	tenants := repository.NewMemoryTenantsRepository()

	health := service.NewHealthService(houses, comps, recs, engine.NewDefault(),
		&memKV{data: make(map[string]string)}, logger)

	m := NewAuthMiddleware(nil, logger) // 直通模式

	router := NewRouter(logger)
	router.RegisterHealthRoutes(m, NewHealthHandler(health, logger))
	router.RegisterAdminRoutes(m,
		NewHousesHandler(houses, comps, health, logger),
		NewComponentsHandler(comps, health, logger),
		NewCustomersHandler(customers),
		NewTenantsHandler(tenants),
	)
	router.RegisterHealthz()

	builtYear := 2020
	houseID, err := houses.CreateHouse(context.Background(), "tenant-1", &domain.House{
		CustomerID:    "customer-1",
		HouseName:     "試験邸",
		StructureType: domain.StructureWood,
		BuiltYear:     &builtYear,
	})
	require.NoError(t, err)

	return &testEnv{
		router:   router,
		houses:   houses,
		comps:    comps,
		recs:     recs,
		tenantID: "tenant-1",
		houseID:  houseID,
	}
}

func doRequest(env *testEnv, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Tenant-Id", env.tenantID)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var envelope struct {
		Code    int            `json:"code"`
		Type    string         `json:"type"`
		Message string         `json:"message"`
		Result  map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, ResultSuccess, envelope.Code, "message: %s", envelope.Message)
	return envelope.Result
}

func TestHealthRecomputeEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	score := 65
	_, err := env.comps.CreateComponent(context.Background(), env.tenantID, &domain.Component{
		HouseID:        env.houseID,
		Category:       domain.CategoryRoof,
		ComponentName:  "南面屋根",
		ConditionScore: &score,
	})
	require.NoError(t, err)

	rec := doRequest(env, http.MethodPost, "/data/api/v1/houses/"+env.houseID+"/health/recompute")
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	scoreObj := result["score"].(map[string]any)
	// 65（屋根） 木造-3
	assert.Equal(t, float64(62), scoreObj["overall_score"])
	assert.Equal(t, float64(1), result["created_count"])
}

func TestHealthGetScoreEndpoint_RecomputesOnMiss(t *testing.T) {
	env := setupTestRouter(t)

	rec := doRequest(env, http.MethodGet, "/data/api/v1/houses/"+env.houseID+"/health")
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	// 部件なし: baseScore 100、木造-3
	assert.Equal(t, float64(97), result["overall_score"])
}

func TestListRecommendationsEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	score := 30
	_, err := env.comps.CreateComponent(context.Background(), env.tenantID, &domain.Component{
		HouseID:        env.houseID,
		Category:       domain.CategoryPlumbing,
		ComponentName:  "1F給湯配管",
		ConditionScore: &score,
	})
	require.NoError(t, err)

	rec := doRequest(env, http.MethodPost, "/data/api/v1/houses/"+env.houseID+"/health/recompute")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(env, http.MethodGet, "/data/api/v1/houses/"+env.houseID+"/recommendations?status=open")
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	items := result["items"].([]any)
	// 配管 high + 全体低下 high
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "high", first["risk_level"])
}

func TestListRecommendationsEndpoint_InvalidStatus(t *testing.T) {
	env := setupTestRouter(t)

	rec := doRequest(env, http.MethodGet, "/data/api/v1/houses/"+env.houseID+"/recommendations?status=bogus")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, ResultError, envelope.Code)
}

func TestResolveRecommendationEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	score := 65
	_, err := env.comps.CreateComponent(context.Background(), env.tenantID, &domain.Component{
		HouseID:        env.houseID,
		Category:       domain.CategoryRoof,
		ComponentName:  "南面屋根",
		ConditionScore: &score,
	})
	require.NoError(t, err)

	doRequest(env, http.MethodPost, "/data/api/v1/houses/"+env.houseID+"/health/recompute")

	open, err := env.recs.ListOpenByHouse(context.Background(), env.tenantID, env.houseID)
	require.NoError(t, err)
	require.Len(t, open, 1)

	rec := doRequest(env, http.MethodPost, "/data/api/v1/recommendations/"+open[0].RecommendationID+"/resolve")
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	assert.Equal(t, true, result["is_resolved"])

	open, err = env.recs.ListOpenByHouse(context.Background(), env.tenantID, env.houseID)
	require.NoError(t, err)
	assert.Len(t, open, 0)
}

func TestMissingTenantHeader(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/houses/"+env.houseID+"/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantIsolation(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/houses/"+env.houseID+"/health", nil)
	req.Header.Set("X-Tenant-Id", "other-tenant")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, ResultError, envelope.Code)
}

func TestHealthz(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
