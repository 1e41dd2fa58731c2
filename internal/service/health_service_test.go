package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"housecare-data/internal/domain"
	"housecare-data/internal/engine"
	"housecare-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeKV 测试用内存缓存
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", assertMissErr
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	return nil, nil
}

var assertMissErr = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache miss" }

type healthFixture struct {
	svc      *HealthService
	houses   *repository.MemoryHousesRepository
	comps    *repository.MemoryComponentsRepository
	recs     *repository.MemoryRecommendationsRepository
	tenantID string
	houseID  string
}

func setupHealthService(t *testing.T, now time.Time) *healthFixture {
	houses := repository.NewMemoryHousesRepository()
	comps := repository.NewMemoryComponentsRepository()
	recs := repository.NewMemoryRecommendationsRepository()

	svc := NewHealthService(houses, comps, recs, engine.NewDefault(), newFakeKV(), zap.NewNop())
	svc.nowFn = func() time.Time { return now }

	builtYear := now.Year() - 5
	houseID, err := houses.CreateHouse(context.Background(), "tenant-1", &domain.House{
		CustomerID:    "customer-1",
		HouseName:     "試験邸",
		StructureType: domain.StructureWood,
		BuiltYear:     &builtYear,
	})
	require.NoError(t, err)

	return &healthFixture{
		svc:      svc,
		houses:   houses,
		comps:    comps,
		recs:     recs,
		tenantID: "tenant-1",
		houseID:  houseID,
	}
}

func addComponent(t *testing.T, f *healthFixture, category domain.ComponentCategory, score int) {
	s := score
	_, err := f.comps.CreateComponent(context.Background(), f.tenantID, &domain.Component{
		HouseID:        f.houseID,
		Category:       category,
		ComponentName:  string(category) + "-1",
		ConditionScore: &s,
	})
	require.NoError(t, err)
}

func TestRecomputeHouse_PersistsScoreAndRecommendations(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)
	ctx := context.Background()

	addComponent(t, f, domain.CategoryRoof, 65)
	addComponent(t, f, domain.CategoryPlumbing, 90)

	result, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)

	// (65+90)/2 = 77.5 -> 78、木造 -3
	assert.Equal(t, 75, result.Score.OverallScore)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 0, result.SkippedCount)

	house, err := f.houses.GetHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	require.NotNil(t, house.OverallScore)
	assert.Equal(t, 75, *house.OverallScore)
	require.NotNil(t, house.ScoreUpdatedAt)

	open, err := f.recs.ListOpenByHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "屋根の点検・補修を検討してください", open[0].Description)
	assert.Equal(t, domain.RiskMedium, open[0].RiskLevel)
}

// 重算两次不产生重复建议
func TestRecomputeHouse_Idempotent(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)
	ctx := context.Background()

	addComponent(t, f, domain.CategoryRoof, 65)

	first, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedCount)

	second, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CreatedCount)
	assert.Equal(t, 1, second.OpenCount)

	open, err := f.recs.ListOpenByHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

// 解决后问题仍存在：下一次重算重新创建同描述建议
func TestRecomputeHouse_RecreatesAfterResolve(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)
	ctx := context.Background()

	addComponent(t, f, domain.CategoryRoof, 65)

	_, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)

	open, err := f.recs.ListOpenByHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, f.svc.ResolveRecommendation(ctx, f.tenantID, open[0].RecommendationID))

	result, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)

	// 已解决1条 + 新建1条
	all, total, err := f.recs.ListByHouse(ctx, f.tenantID, f.houseID, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

// 部件状态恶化后重算：既有建议保持，新增更高风险的建议
func TestRecomputeHouse_AddsOnDeterioration(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)
	ctx := context.Background()

	addComponent(t, f, domain.CategoryRoof, 65)
	_, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)

	addComponent(t, f, domain.CategoryPlumbing, 30)
	result, err := f.svc.RecomputeHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)

	// 配管 high + 全体低下 high（(65+30)/2=47.5->48、-3 -> 45 < 50）
	assert.Equal(t, 2, result.CreatedCount)

	open, err := f.recs.ListOpenByHouse(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Len(t, open, 3)
}

func TestGetHouseScore_CachesAfterRecompute(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)
	ctx := context.Background()

	addComponent(t, f, domain.CategoryRoof, 90)

	view, err := f.svc.GetHouseScore(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Equal(t, 87, view.OverallScore) // 90 木造-3
	assert.Equal(t, 90, view.CategoryScores[string(domain.CategoryRoof)])

	// 二回目はキャッシュヒット（リポジトリを壊しても返る）
	f.houses.DeleteHouse(ctx, f.tenantID, f.houseID)
	cached, err := f.svc.GetHouseScore(ctx, f.tenantID, f.houseID)
	require.NoError(t, err)
	assert.Equal(t, view.OverallScore, cached.OverallScore)
}

func TestResolveRecommendation_NotFound(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f := setupHealthService(t, now)

	err := f.svc.ResolveRecommendation(context.Background(), f.tenantID, "no-such-id")
	assert.Error(t, err)
}
