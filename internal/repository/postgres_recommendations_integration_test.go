// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"
	"time"

	"housecare-data/internal/config"
	"housecare-data/internal/database"
	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// 获取测试数据库连接
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getTestEnv("TEST_DB_HOST", "localhost"),
		Port:     getTestEnvInt("TEST_DB_PORT", 5432),
		User:     getTestEnv("TEST_DB_USER", "postgres"),
		Password: getTestEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getTestEnv("TEST_DB_NAME", "housecare"),
		SSLMode:  getTestEnv("TEST_DB_SSLMODE", "disable"),
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}

	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil
	}

	return db
}

func getTestEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getTestEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// 清理测试数据（租户按外键级联删除住宅/部件/建议）
func cleanupTestTenant(t *testing.T, db *sql.DB, tenantID string) {
	db.Exec(`DELETE FROM tenants WHERE tenant_id = $1`, tenantID)
}

func seedTestHouse(t *testing.T, db *sql.DB) (tenantID, houseID string) {
	ctx := context.Background()

	tenants := NewPostgresTenantsRepository(db)
	tenantID, err := tenants.CreateTenant(ctx, &domain.Tenant{
		TenantName: "Test Koumuten",
		Domain:     "test-" + uuid.New().String() + ".local",
	})
	if err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}

	customers := NewPostgresCustomersRepository(db)
	customerID, err := customers.CreateCustomer(ctx, tenantID, &domain.Customer{
		CustomerName: "試験 太郎",
	})
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}

	houses := NewPostgresHousesRepository(db)
	houseID, err = houses.CreateHouse(ctx, tenantID, &domain.House{
		CustomerID:    customerID,
		HouseName:     "試験邸",
		StructureType: domain.StructureWood,
	})
	if err != nil {
		t.Fatalf("CreateHouse failed: %v", err)
	}

	return tenantID, houseID
}

// 部分唯一索引的真实行为：同住宅同描述的未解决建议只存一条，
// 第二次创建返回 ("", nil)；解决后同描述可再次创建
func TestPostgresRecommendationsRepository_OpenDescriptionUniqueness(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	ctx := context.Background()
	tenantID, houseID := seedTestHouse(t, db)
	defer cleanupTestTenant(t, db, tenantID)

	repo := NewPostgresRecommendationsRepository(db)

	rec := &domain.MaintenanceRecommendation{
		HouseID:     houseID,
		RiskLevel:   domain.RiskMedium,
		Description: "屋根の点検・補修を検討してください",
	}

	id1, err := repo.CreateRecommendation(ctx, tenantID, rec)
	if err != nil {
		t.Fatalf("first CreateRecommendation failed: %v", err)
	}
	if id1 == "" {
		t.Fatal("expected non-empty recommendation_id")
	}

	// 同描述重复创建：唯一索引拦截，按成功处理
	id2, err := repo.CreateRecommendation(ctx, tenantID, rec)
	if err != nil {
		t.Fatalf("duplicate CreateRecommendation returned error: %v", err)
	}
	if id2 != "" {
		t.Fatalf("expected empty id on duplicate, got %s", id2)
	}

	open, err := repo.ListOpenByHouse(ctx, tenantID, houseID)
	if err != nil {
		t.Fatalf("ListOpenByHouse failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open recommendation, got %d", len(open))
	}

	// 解决后同描述不再被索引拦截
	if err := repo.ResolveRecommendation(ctx, tenantID, id1, time.Now()); err != nil {
		t.Fatalf("ResolveRecommendation failed: %v", err)
	}

	id3, err := repo.CreateRecommendation(ctx, tenantID, rec)
	if err != nil {
		t.Fatalf("CreateRecommendation after resolve failed: %v", err)
	}
	if id3 == "" {
		t.Fatal("expected new recommendation after previous was resolved")
	}
}

func TestPostgresRecommendationsRepository_ListOrdering(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	ctx := context.Background()
	tenantID, houseID := seedTestHouse(t, db)
	defer cleanupTestTenant(t, db, tenantID)

	repo := NewPostgresRecommendationsRepository(db)

	seed := []struct {
		risk domain.RiskLevel
		desc string
	}{
		{domain.RiskLow, "外壁の点検をご検討ください"},
		{domain.RiskHigh, "配管の交換をご検討ください"},
		{domain.RiskMedium, "屋根の点検・補修を検討してください"},
	}
	for _, s := range seed {
		if _, err := repo.CreateRecommendation(ctx, tenantID, &domain.MaintenanceRecommendation{
			HouseID:     houseID,
			RiskLevel:   s.risk,
			Description: s.desc,
		}); err != nil {
			t.Fatalf("CreateRecommendation failed: %v", err)
		}
	}

	recs, total, err := repo.ListByHouse(ctx, tenantID, houseID, nil, 1, 20)
	if err != nil {
		t.Fatalf("ListByHouse failed: %v", err)
	}
	if total != 3 || len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got total=%d len=%d", total, len(recs))
	}
	if recs[0].RiskLevel != domain.RiskHigh || recs[1].RiskLevel != domain.RiskMedium || recs[2].RiskLevel != domain.RiskLow {
		t.Fatalf("unexpected ordering: %s, %s, %s", recs[0].RiskLevel, recs[1].RiskLevel, recs[2].RiskLevel)
	}
}
