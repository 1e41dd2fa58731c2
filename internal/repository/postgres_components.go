package repository

import (
	"context"
	"database/sql"
	"fmt"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresComponentsRepository 住宅部件Repository实现
type PostgresComponentsRepository struct {
	db *sql.DB
}

// NewPostgresComponentsRepository 创建住宅部件Repository
func NewPostgresComponentsRepository(db *sql.DB) *PostgresComponentsRepository {
	return &PostgresComponentsRepository{db: db}
}

// 确保实现了接口
var _ ComponentsRepository = (*PostgresComponentsRepository)(nil)

const componentColumns = `
			component_id::text,
			tenant_id::text,
			house_id::text,
			category,
			component_name,
			condition_score,
			installed_date,
			expected_lifespan_years,
			warranty_expiry_date,
			last_inspection_date,
			created_at,
			updated_at`

// GetComponent 获取部件
func (r *PostgresComponentsRepository) GetComponent(ctx context.Context, tenantID, componentID string) (*domain.Component, error) {
	if tenantID == "" || componentID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + componentColumns + `
		FROM components
		WHERE tenant_id = $1 AND component_id = $2
	`

	c, err := scanComponent(r.db.QueryRowContext(ctx, query, tenantID, componentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("component not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return c, nil
}

// ListComponentsByHouse 获取住宅的全部部件
func (r *PostgresComponentsRepository) ListComponentsByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.Component, error) {
	if tenantID == "" || houseID == "" {
		return []*domain.Component{}, nil
	}

	query := `
		SELECT ` + componentColumns + `
		FROM components
		WHERE tenant_id = $1 AND house_id = $2
		ORDER BY category, component_name
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var comps []*domain.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate components: %w", err)
	}
	return comps, nil
}

// CreateComponent 创建部件
func (r *PostgresComponentsRepository) CreateComponent(ctx context.Context, tenantID string, c *domain.Component) (string, error) {
	if err := validateComponent(tenantID, c); err != nil {
		return "", err
	}

	id := c.ComponentID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO components (
			component_id, tenant_id, house_id, category, component_name,
			condition_score, installed_date, expected_lifespan_years,
			warranty_expiry_date, last_inspection_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		tenantID,
		c.HouseID,
		string(c.Category),
		c.ComponentName,
		c.ConditionScore,
		c.InstalledDate,
		c.ExpectedLifespanYears,
		c.WarrantyExpiryDate,
		c.LastInspectionDate,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create component: %w", err)
	}
	return id, nil
}

// BulkCreateComponents 批量创建部件（Excel 导入用，单事务）
func (r *PostgresComponentsRepository) BulkCreateComponents(ctx context.Context, tenantID string, comps []*domain.Component) ([]string, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	for _, c := range comps {
		if err := validateComponent(tenantID, c); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components (
			component_id, tenant_id, house_id, category, component_name,
			condition_score, installed_date, expected_lifespan_years,
			warranty_expiry_date, last_inspection_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(comps))
	for _, c := range comps {
		id := c.ComponentID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			id, tenantID, c.HouseID, string(c.Category), c.ComponentName,
			c.ConditionScore, c.InstalledDate, c.ExpectedLifespanYears,
			c.WarrantyExpiryDate, c.LastInspectionDate,
		); err != nil {
			return nil, fmt.Errorf("failed to insert component %s: %w", c.ComponentName, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk create: %w", err)
	}
	return ids, nil
}

// UpdateComponent 更新部件
func (r *PostgresComponentsRepository) UpdateComponent(ctx context.Context, tenantID, componentID string, c *domain.Component) error {
	if tenantID == "" || componentID == "" {
		return fmt.Errorf("tenant_id and component_id are required")
	}
	if c.Category != "" && !domain.ValidComponentCategory(c.Category) {
		return fmt.Errorf("invalid category: %q", c.Category)
	}

	query := `
		UPDATE components
		SET category = COALESCE(NULLIF($3, ''), category),
		    component_name = COALESCE(NULLIF($4, ''), component_name),
		    condition_score = COALESCE($5, condition_score),
		    installed_date = COALESCE($6, installed_date),
		    expected_lifespan_years = COALESCE($7, expected_lifespan_years),
		    warranty_expiry_date = COALESCE($8, warranty_expiry_date),
		    last_inspection_date = COALESCE($9, last_inspection_date),
		    updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = $1 AND component_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID, componentID,
		string(c.Category), c.ComponentName, c.ConditionScore,
		c.InstalledDate, c.ExpectedLifespanYears,
		c.WarrantyExpiryDate, c.LastInspectionDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("component not found: %s", componentID)
	}
	return nil
}

// DeleteComponent 删除部件
func (r *PostgresComponentsRepository) DeleteComponent(ctx context.Context, tenantID, componentID string) error {
	if tenantID == "" || componentID == "" {
		return fmt.Errorf("tenant_id and component_id are required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM components WHERE tenant_id = $1 AND component_id = $2`,
		tenantID, componentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("component not found: %s", componentID)
	}
	return nil
}

func validateComponent(tenantID string, c *domain.Component) error {
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if c.HouseID == "" {
		return fmt.Errorf("house_id is required")
	}
	if c.ComponentName == "" {
		return fmt.Errorf("component_name is required")
	}
	if !domain.ValidComponentCategory(c.Category) {
		return fmt.Errorf("invalid category: %q", c.Category)
	}
	if c.ConditionScore != nil && (*c.ConditionScore < 0 || *c.ConditionScore > 100) {
		return fmt.Errorf("condition_score out of range: %d", *c.ConditionScore)
	}
	if c.ExpectedLifespanYears != nil && *c.ExpectedLifespanYears <= 0 {
		return fmt.Errorf("expected_lifespan_years must be positive")
	}
	return nil
}

func scanComponent(row rowScanner) (*domain.Component, error) {
	var c domain.Component
	var conditionScore sql.NullInt64
	var lifespan sql.NullFloat64
	var installed, warranty, inspected sql.NullTime
	var category string

	err := row.Scan(
		&c.ComponentID,
		&c.TenantID,
		&c.HouseID,
		&category,
		&c.ComponentName,
		&conditionScore,
		&installed,
		&lifespan,
		&warranty,
		&inspected,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Category = domain.ComponentCategory(category)
	if conditionScore.Valid {
		s := int(conditionScore.Int64)
		c.ConditionScore = &s
	}
	if installed.Valid {
		c.InstalledDate = &installed.Time
	}
	if lifespan.Valid {
		c.ExpectedLifespanYears = &lifespan.Float64
	}
	if warranty.Valid {
		c.WarrantyExpiryDate = &warranty.Time
	}
	if inspected.Valid {
		c.LastInspectionDate = &inspected.Time
	}
	return &c, nil
}
