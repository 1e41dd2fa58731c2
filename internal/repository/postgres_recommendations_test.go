package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housecare-data/internal/domain"
)

func setupMockRecommendationsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRecommendationsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresRecommendationsRepository(db)
	return db, mock, repo
}

func TestGetRecommendation_Success(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	recID := uuid.New().String()
	houseID := uuid.New().String()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"recommendation_id", "tenant_id", "house_id", "component_id",
		"risk_level", "description", "recommended_action",
		"due_date", "estimated_cost_min", "estimated_cost_max",
		"is_resolved", "resolved_at", "created_at",
	}).AddRow(
		recID, tenantID, houseID, nil,
		"medium", "屋根の点検・補修を検討してください", nil,
		nil, nil, nil,
		false, nil, createdAt,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(tenantID, recID).
		WillReturnRows(rows)

	rec, err := repo.GetRecommendation(ctx, tenantID, recID)

	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, recID, rec.RecommendationID)
	assert.Equal(t, houseID, rec.HouseID)
	assert.Equal(t, domain.RiskMedium, rec.RiskLevel)
	assert.Equal(t, "屋根の点検・補修を検討してください", rec.Description)
	assert.Nil(t, rec.ComponentID)
	assert.False(t, rec.IsResolved)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecommendation_NotFound(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	recID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(tenantID, recID).
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.GetRecommendation(ctx, tenantID, recID)

	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecommendation_Success(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	houseID := uuid.New().String()
	componentID := uuid.New().String()
	action := "専門業者による点検を推奨"

	mock.ExpectExec(`INSERT INTO maintenance_recommendations`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.CreateRecommendation(ctx, tenantID, &domain.MaintenanceRecommendation{
		HouseID:           houseID,
		ComponentID:       &componentID,
		RiskLevel:         domain.RiskHigh,
		Description:       "配管の交換をご検討ください",
		RecommendedAction: &action,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

// 并发重算撞上部分唯一索引时按良性空操作处理
func TestCreateRecommendation_DuplicateOpenDescription(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	houseID := uuid.New().String()

	mock.ExpectExec(`INSERT INTO maintenance_recommendations`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_recommendations_open_description"})

	id, err := repo.CreateRecommendation(ctx, tenantID, &domain.MaintenanceRecommendation{
		HouseID:     houseID,
		RiskLevel:   domain.RiskMedium,
		Description: "屋根の点検・補修を検討してください",
	})

	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecommendation_OtherDBError(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()

	mock.ExpectExec(`INSERT INTO maintenance_recommendations`).
		WillReturnError(&pq.Error{Code: "23503"})

	id, err := repo.CreateRecommendation(ctx, tenantID, &domain.MaintenanceRecommendation{
		HouseID:     uuid.New().String(),
		RiskLevel:   domain.RiskLow,
		Description: "外壁の点検をご検討ください",
	})

	assert.Error(t, err)
	assert.Empty(t, id)
	assert.Contains(t, err.Error(), "failed to create recommendation")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecommendation_InvalidRiskLevel(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()

	id, err := repo.CreateRecommendation(ctx, uuid.New().String(), &domain.MaintenanceRecommendation{
		HouseID:     uuid.New().String(),
		RiskLevel:   domain.RiskLevel("critical"),
		Description: "何かの説明",
	})

	assert.Error(t, err)
	assert.Empty(t, id)
	assert.Contains(t, err.Error(), "invalid risk_level")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenByHouse(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	houseID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"recommendation_id", "tenant_id", "house_id", "component_id",
		"risk_level", "description", "recommended_action",
		"due_date", "estimated_cost_min", "estimated_cost_max",
		"is_resolved", "resolved_at", "created_at",
	}).AddRow(
		uuid.New().String(), tenantID, houseID, nil,
		"high", "配管の交換をご検討ください", nil,
		nil, nil, nil, false, nil, now,
	).AddRow(
		uuid.New().String(), tenantID, houseID, nil,
		"medium", "屋根の点検・補修を検討してください", nil,
		nil, nil, nil, false, nil, now.Add(-time.Hour),
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(tenantID, houseID).
		WillReturnRows(rows)

	recs, err := repo.ListOpenByHouse(ctx, tenantID, houseID)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "配管の交換をご検討ください", recs[0].Description)
	assert.Equal(t, "屋根の点検・補修を検討してください", recs[1].Description)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByHouse_WithFilters(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	houseID := uuid.New().String()

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(tenantID, houseID, "high").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"recommendation_id", "tenant_id", "house_id", "component_id",
		"risk_level", "description", "recommended_action",
		"due_date", "estimated_cost_min", "estimated_cost_max",
		"is_resolved", "resolved_at", "created_at",
	}).AddRow(
		uuid.New().String(), tenantID, houseID, nil,
		"high", "配管の交換をご検討ください", nil,
		nil, nil, nil, false, nil, time.Now(),
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(tenantID, houseID, "high", 20, 0).
		WillReturnRows(rows)

	recs, total, err := repo.ListByHouse(ctx, tenantID, houseID, &RecommendationFilters{
		Status:    "open",
		RiskLevel: "high",
	}, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.RiskHigh, recs[0].RiskLevel)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRecommendation_Success(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	recID := uuid.New().String()
	at := time.Now()

	mock.ExpectExec(`UPDATE maintenance_recommendations`).
		WithArgs(tenantID, recID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ResolveRecommendation(ctx, tenantID, recID, at)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRecommendation_AlreadyResolved(t *testing.T) {
	db, mock, repo := setupMockRecommendationsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	recID := uuid.New().String()
	at := time.Now()

	mock.ExpectExec(`UPDATE maintenance_recommendations`).
		WithArgs(tenantID, recID, at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ResolveRecommendation(ctx, tenantID, recID, at)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already resolved")

	require.NoError(t, mock.ExpectationsWereMet())
}
