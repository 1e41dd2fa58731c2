package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresHousesRepository 住宅Repository实现（强类型版本）
type PostgresHousesRepository struct {
	db *sql.DB
}

// NewPostgresHousesRepository 创建住宅Repository
func NewPostgresHousesRepository(db *sql.DB) *PostgresHousesRepository {
	return &PostgresHousesRepository{db: db}
}

// 确保实现了接口
var _ HousesRepository = (*PostgresHousesRepository)(nil)

const houseColumns = `
			house_id::text,
			tenant_id::text,
			customer_id::text,
			house_name,
			address,
			built_year,
			structure_type,
			overall_score,
			score_updated_at,
			created_at,
			updated_at`

// GetHouse 获取住宅
func (r *PostgresHousesRepository) GetHouse(ctx context.Context, tenantID, houseID string) (*domain.House, error) {
	if tenantID == "" || houseID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + houseColumns + `
		FROM houses
		WHERE tenant_id = $1 AND house_id = $2
	`

	house, err := scanHouse(r.db.QueryRowContext(ctx, query, tenantID, houseID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("house not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get house: %w", err)
	}
	return house, nil
}

// ListHouses 批量查询住宅（支持过滤和分页）
func (r *PostgresHousesRepository) ListHouses(ctx context.Context, tenantID string, filters *HouseFilters, page, size int) ([]*domain.House, int, error) {
	if tenantID == "" {
		return []*domain.House{}, 0, nil
	}

	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	argN := 2

	if filters != nil {
		if filters.CustomerID != "" {
			where = append(where, fmt.Sprintf("customer_id = $%d", argN))
			args = append(args, filters.CustomerID)
			argN++
		}
		if filters.StructureType != "" {
			where = append(where, fmt.Sprintf("structure_type = $%d", argN))
			args = append(args, filters.StructureType)
			argN++
		}
		if filters.MaxScore != nil {
			where = append(where, fmt.Sprintf("overall_score <= $%d", argN))
			args = append(args, *filters.MaxScore)
			argN++
		}
		if filters.Keyword != "" {
			where = append(where, fmt.Sprintf("(house_name ILIKE $%d OR address ILIKE $%d)", argN, argN))
			args = append(args, "%"+filters.Keyword+"%")
			argN++
		}
	}

	queryCount := `
		SELECT COUNT(*)
		FROM houses
		WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count houses: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	argsList := append(args, size, offset)
	query := `
		SELECT ` + houseColumns + `
		FROM houses
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)

	rows, err := r.db.QueryContext(ctx, query, argsList...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list houses: %w", err)
	}
	defer rows.Close()

	var houses []*domain.House
	for rows.Next() {
		house, err := scanHouse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan house: %w", err)
		}
		houses = append(houses, house)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate houses: %w", err)
	}

	return houses, total, nil
}

// CreateHouse 创建住宅
func (r *PostgresHousesRepository) CreateHouse(ctx context.Context, tenantID string, house *domain.House) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	if house.CustomerID == "" {
		return "", fmt.Errorf("customer_id is required")
	}
	if house.HouseName == "" {
		return "", fmt.Errorf("house_name is required")
	}
	if house.StructureType == "" {
		house.StructureType = domain.StructureUnknown
	}
	if !domain.ValidStructureType(house.StructureType) {
		return "", fmt.Errorf("invalid structure_type: %q", house.StructureType)
	}

	id := house.HouseID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO houses (
			house_id, tenant_id, customer_id, house_name, address,
			built_year, structure_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		tenantID,
		house.CustomerID,
		house.HouseName,
		nullableString(house.Address),
		house.BuiltYear,
		string(house.StructureType),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create house: %w", err)
	}

	return id, nil
}

// UpdateHouse 更新住宅基本信息（评分字段由 UpdateHouseScore 单独回写）
func (r *PostgresHousesRepository) UpdateHouse(ctx context.Context, tenantID, houseID string, house *domain.House) error {
	if tenantID == "" || houseID == "" {
		return fmt.Errorf("tenant_id and house_id are required")
	}
	if house.StructureType != "" && !domain.ValidStructureType(house.StructureType) {
		return fmt.Errorf("invalid structure_type: %q", house.StructureType)
	}

	query := `
		UPDATE houses
		SET house_name = COALESCE(NULLIF($3, ''), house_name),
		    address = COALESCE(NULLIF($4, ''), address),
		    built_year = COALESCE($5, built_year),
		    structure_type = COALESCE(NULLIF($6, ''), structure_type),
		    updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = $1 AND house_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID, houseID,
		house.HouseName, house.Address, house.BuiltYear, string(house.StructureType),
	)
	if err != nil {
		return fmt.Errorf("failed to update house: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update house: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("house not found: %s", houseID)
	}
	return nil
}

// DeleteHouse 删除住宅（部件与建议按外键级联删除）
func (r *PostgresHousesRepository) DeleteHouse(ctx context.Context, tenantID, houseID string) error {
	if tenantID == "" || houseID == "" {
		return fmt.Errorf("tenant_id and house_id are required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM houses WHERE tenant_id = $1 AND house_id = $2`,
		tenantID, houseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete house: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete house: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("house not found: %s", houseID)
	}
	return nil
}

// UpdateHouseScore 回写整体健康评分
func (r *PostgresHousesRepository) UpdateHouseScore(ctx context.Context, tenantID, houseID string, score int, at time.Time) error {
	if tenantID == "" || houseID == "" {
		return fmt.Errorf("tenant_id and house_id are required")
	}

	query := `
		UPDATE houses
		SET overall_score = $3, score_updated_at = $4, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = $1 AND house_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, tenantID, houseID, score, at)
	if err != nil {
		return fmt.Errorf("failed to update house score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update house score: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("house not found: %s", houseID)
	}
	return nil
}

// ListSweepTargets 列出全部待巡检住宅（跨租户）
func (r *PostgresHousesRepository) ListSweepTargets(ctx context.Context) ([]SweepTarget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tenant_id::text, house_id::text FROM houses ORDER BY tenant_id, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep targets: %w", err)
	}
	defer rows.Close()

	var targets []SweepTarget
	for rows.Next() {
		var t SweepTarget
		if err := rows.Scan(&t.TenantID, &t.HouseID); err != nil {
			return nil, fmt.Errorf("failed to scan sweep target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sweep targets: %w", err)
	}
	return targets, nil
}

func scanHouse(row rowScanner) (*domain.House, error) {
	var house domain.House
	var address sql.NullString
	var builtYear, overallScore sql.NullInt64
	var scoreUpdatedAt sql.NullTime
	var structureType string

	err := row.Scan(
		&house.HouseID,
		&house.TenantID,
		&house.CustomerID,
		&house.HouseName,
		&address,
		&builtYear,
		&structureType,
		&overallScore,
		&scoreUpdatedAt,
		&house.CreatedAt,
		&house.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	house.StructureType = domain.StructureType(structureType)
	if address.Valid {
		house.Address = address.String
	}
	if builtYear.Valid {
		y := int(builtYear.Int64)
		house.BuiltYear = &y
	}
	if overallScore.Valid {
		s := int(overallScore.Int64)
		house.OverallScore = &s
	}
	if scoreUpdatedAt.Valid {
		house.ScoreUpdatedAt = &scoreUpdatedAt.Time
	}
	return &house, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
