package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRecommendationsRepository 维护建议Repository实现
type PostgresRecommendationsRepository struct {
	db *sql.DB
}

// NewPostgresRecommendationsRepository 创建维护建议Repository
func NewPostgresRecommendationsRepository(db *sql.DB) *PostgresRecommendationsRepository {
	return &PostgresRecommendationsRepository{db: db}
}

// 确保实现了接口
var _ RecommendationsRepository = (*PostgresRecommendationsRepository)(nil)

const recommendationColumns = `
			recommendation_id::text,
			tenant_id::text,
			house_id::text,
			component_id::text,
			risk_level,
			description,
			recommended_action,
			due_date,
			estimated_cost_min,
			estimated_cost_max,
			is_resolved,
			resolved_at,
			created_at`

// GetRecommendation 获取单条维护建议
func (r *PostgresRecommendationsRepository) GetRecommendation(ctx context.Context, tenantID, recommendationID string) (*domain.MaintenanceRecommendation, error) {
	if tenantID == "" || recommendationID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + recommendationColumns + `
		FROM maintenance_recommendations
		WHERE tenant_id = $1 AND recommendation_id = $2
	`

	rec, err := scanRecommendation(r.db.QueryRowContext(ctx, query, tenantID, recommendationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recommendation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return rec, nil
}

// ListOpenByHouse 获取住宅的全部未解决建议
func (r *PostgresRecommendationsRepository) ListOpenByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.MaintenanceRecommendation, error) {
	if tenantID == "" || houseID == "" {
		return []*domain.MaintenanceRecommendation{}, nil
	}

	query := `
		SELECT ` + recommendationColumns + `
		FROM maintenance_recommendations
		WHERE tenant_id = $1 AND house_id = $2 AND NOT is_resolved
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open recommendations: %w", err)
	}
	defer rows.Close()

	return collectRecommendations(rows)
}

// ListByHouse 批量查询维护建议（支持过滤和分页）
func (r *PostgresRecommendationsRepository) ListByHouse(ctx context.Context, tenantID, houseID string, filters *RecommendationFilters, page, size int) ([]*domain.MaintenanceRecommendation, int, error) {
	if tenantID == "" || houseID == "" {
		return []*domain.MaintenanceRecommendation{}, 0, nil
	}

	where := []string{"tenant_id = $1", "house_id = $2"}
	args := []any{tenantID, houseID}
	argN := 3

	if filters != nil {
		switch filters.Status {
		case "open":
			where = append(where, "NOT is_resolved")
		case "resolved":
			where = append(where, "is_resolved")
		}
		if filters.RiskLevel != "" {
			where = append(where, fmt.Sprintf("risk_level = $%d", argN))
			args = append(args, filters.RiskLevel)
			argN++
		}
	}

	queryCount := `
		SELECT COUNT(*)
		FROM maintenance_recommendations
		WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	// 展示排序：high < medium < low 全序，同级按 created_at 倒序
	argsList := append(args, size, offset)
	query := `
		SELECT ` + recommendationColumns + `
		FROM maintenance_recommendations
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY
			CASE risk_level
				WHEN 'high' THEN 0
				WHEN 'medium' THEN 1
				ELSE 2
			END,
			created_at DESC
		LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)

	rows, err := r.db.QueryContext(ctx, query, argsList...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	recs, err := collectRecommendations(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// CreateRecommendation 创建维护建议
// 撞上部分唯一索引 uq_recommendations_open_description（并发重算竞争）时返回 ("", nil)
func (r *PostgresRecommendationsRepository) CreateRecommendation(ctx context.Context, tenantID string, rec *domain.MaintenanceRecommendation) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	if rec.HouseID == "" {
		return "", fmt.Errorf("house_id is required")
	}
	if rec.Description == "" {
		return "", fmt.Errorf("description is required")
	}
	if !domain.ValidRiskLevel(rec.RiskLevel) {
		return "", fmt.Errorf("invalid risk_level: %q", rec.RiskLevel)
	}

	id := rec.RecommendationID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO maintenance_recommendations (
			recommendation_id, tenant_id, house_id, component_id,
			risk_level, description, recommended_action,
			due_date, estimated_cost_min, estimated_cost_max,
			is_resolved, resolved_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, NULL, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		tenantID,
		rec.HouseID,
		rec.ComponentID,
		string(rec.RiskLevel),
		rec.Description,
		rec.RecommendedAction,
		rec.DueDate,
		rec.EstimatedCostMin,
		rec.EstimatedCostMax,
		createdAt,
	)
	if err != nil {
		// unique_violation：并发重算已创建等价的未解决建议，按成功处理
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", nil
		}
		return "", fmt.Errorf("failed to create recommendation: %w", err)
	}

	return id, nil
}

// ResolveRecommendation 标记建议已解决
func (r *PostgresRecommendationsRepository) ResolveRecommendation(ctx context.Context, tenantID, recommendationID string, at time.Time) error {
	if tenantID == "" || recommendationID == "" {
		return fmt.Errorf("tenant_id and recommendation_id are required")
	}

	query := `
		UPDATE maintenance_recommendations
		SET is_resolved = true, resolved_at = $3
		WHERE tenant_id = $1 AND recommendation_id = $2 AND NOT is_resolved
	`

	result, err := r.db.ExecContext(ctx, query, tenantID, recommendationID, at)
	if err != nil {
		return fmt.Errorf("failed to resolve recommendation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve recommendation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("recommendation not found or already resolved: %s", recommendationID)
	}
	return nil
}

// rowScanner QueryRow / Rows 共用的扫描入口
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*domain.MaintenanceRecommendation, error) {
	var rec domain.MaintenanceRecommendation
	var componentID, recommendedAction sql.NullString
	var dueDate, resolvedAt sql.NullTime
	var costMin, costMax sql.NullInt64
	var riskLevel string

	err := row.Scan(
		&rec.RecommendationID,
		&rec.TenantID,
		&rec.HouseID,
		&componentID,
		&riskLevel,
		&rec.Description,
		&recommendedAction,
		&dueDate,
		&costMin,
		&costMax,
		&rec.IsResolved,
		&resolvedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.RiskLevel = domain.RiskLevel(riskLevel)
	if componentID.Valid {
		rec.ComponentID = &componentID.String
	}
	if recommendedAction.Valid {
		rec.RecommendedAction = &recommendedAction.String
	}
	if dueDate.Valid {
		rec.DueDate = &dueDate.Time
	}
	if costMin.Valid {
		rec.EstimatedCostMin = &costMin.Int64
	}
	if costMax.Valid {
		rec.EstimatedCostMax = &costMax.Int64
	}
	if resolvedAt.Valid {
		rec.ResolvedAt = &resolvedAt.Time
	}
	return &rec, nil
}

func collectRecommendations(rows *sql.Rows) ([]*domain.MaintenanceRecommendation, error) {
	var recs []*domain.MaintenanceRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}
