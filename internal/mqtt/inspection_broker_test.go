package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"housecare-data/internal/config"
	"housecare-data/internal/domain"
	"housecare-data/internal/engine"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *nopKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", errMiss{}
}

func (f *nopKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *nopKV) Del(ctx context.Context, key string) error { return nil }

func (f *nopKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) { return nil, nil }

type errMiss struct{}

func (errMiss) Error() string { return "cache miss" }

func setupBroker(t *testing.T) (*InspectionBroker, *repository.MemoryComponentsRepository, *repository.MemoryRecommendationsRepository, string, string, string) {
	logger := zap.NewNop()
	houses := repository.NewMemoryHousesRepository()
	comps := repository.NewMemoryComponentsRepository()
	recs := repository.NewMemoryRecommendationsRepository()

	health := service.NewHealthService(houses, comps, recs, engine.NewDefault(),
		&nopKV{data: make(map[string]string)}, logger)

	ctx := context.Background()
	houseID, err := houses.CreateHouse(ctx, "tenant-1", &domain.House{
		CustomerID:    "customer-1",
		HouseName:     "試験邸",
		StructureType: domain.StructureRC,
	})
	require.NoError(t, err)

	score := 90
	componentID, err := comps.CreateComponent(ctx, "tenant-1", &domain.Component{
		HouseID:        houseID,
		Category:       domain.CategoryRoof,
		ComponentName:  "南面屋根",
		ConditionScore: &score,
	})
	require.NoError(t, err)

	broker := &InspectionBroker{
		cfg:    &config.MQTTConfig{Topic: "housecare/inspection/#"},
		comps:  comps,
		health: health,
		logger: logger,
	}
	return broker, comps, recs, "tenant-1", houseID, componentID
}

func TestHandleMessage_AppliesReportAndRecomputes(t *testing.T) {
	broker, comps, recs, tenantID, houseID, componentID := setupBroker(t)

	payload := `{
		"tenant_id": "` + tenantID + `",
		"house_id": "` + houseID + `",
		"component_id": "` + componentID + `",
		"condition_score": 55,
		"inspected_at": "2026-08-20"
	}`

	require.NoError(t, broker.HandleMessage("housecare/inspection/"+houseID, []byte(payload)))

	comp, err := comps.GetComponent(context.Background(), tenantID, componentID)
	require.NoError(t, err)
	require.NotNil(t, comp.ConditionScore)
	assert.Equal(t, 55, *comp.ConditionScore)
	require.NotNil(t, comp.LastInspectionDate)
	assert.Equal(t, "2026-08-20", comp.LastInspectionDate.Format("2006-01-02"))

	// 55 < 70: medium 建议が生成される（全体は 55+5=60 で警戒線より上）
	open, err := recs.ListOpenByHouse(context.Background(), tenantID, houseID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, domain.RiskMedium, open[0].RiskLevel)
}

func TestHandleMessage_InvalidPayload(t *testing.T) {
	broker, _, _, _, _, _ := setupBroker(t)

	assert.Error(t, broker.HandleMessage("housecare/inspection/x", []byte("not json")))
	assert.Error(t, broker.HandleMessage("housecare/inspection/x", []byte(`{"tenant_id":""}`)))
	assert.Error(t, broker.HandleMessage("housecare/inspection/x", []byte(`{"tenant_id":"t","house_id":"h","component_id":"c","condition_score":150}`)))
}

func TestHandleMessage_UnknownComponent(t *testing.T) {
	broker, _, _, tenantID, houseID, _ := setupBroker(t)

	payload := `{"tenant_id":"` + tenantID + `","house_id":"` + houseID + `","component_id":"no-such","condition_score":50}`
	assert.Error(t, broker.HandleMessage("housecare/inspection/x", []byte(payload)))
}
