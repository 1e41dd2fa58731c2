package repository

import (
	"context"
	"database/sql"
	"fmt"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresTenantsRepository 租户Repository实现
type PostgresTenantsRepository struct {
	db *sql.DB
}

// NewPostgresTenantsRepository 创建租户Repository
func NewPostgresTenantsRepository(db *sql.DB) *PostgresTenantsRepository {
	return &PostgresTenantsRepository{db: db}
}

// 确保实现了接口
var _ TenantsRepository = (*PostgresTenantsRepository)(nil)

const tenantColumns = `
			tenant_id::text,
			tenant_name,
			domain,
			email,
			phone,
			status,
			metadata,
			created_at,
			updated_at`

// GetTenant 获取租户
func (r *PostgresTenantsRepository) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if tenantID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE tenant_id = $1
	`

	t, err := scanTenant(r.db.QueryRowContext(ctx, query, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("tenant not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// GetTenantByDomain 按域名获取租户
func (r *PostgresTenantsRepository) GetTenantByDomain(ctx context.Context, dom string) (*domain.Tenant, error) {
	if dom == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE domain = $1
	`

	t, err := scanTenant(r.db.QueryRowContext(ctx, query, dom))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("tenant not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get tenant by domain: %w", err)
	}
	return t, nil
}

// ListTenants 列出全部租户
func (r *PostgresTenantsRepository) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}

// CreateTenant 创建租户
func (r *PostgresTenantsRepository) CreateTenant(ctx context.Context, t *domain.Tenant) (string, error) {
	if t.TenantName == "" {
		return "", fmt.Errorf("tenant_name is required")
	}
	if t.Domain == "" {
		return "", fmt.Errorf("domain is required")
	}
	status := t.Status
	if status == "" {
		status = "active"
	}

	id := t.TenantID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO tenants (
			tenant_id, tenant_name, domain, email, phone, status, metadata,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	var metadata any
	if len(t.Metadata) > 0 {
		metadata = []byte(t.Metadata)
	}

	_, err := r.db.ExecContext(ctx, query,
		id, t.TenantName, t.Domain,
		nullableString(t.Email), nullableString(t.Phone),
		status, metadata,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create tenant: %w", err)
	}
	return id, nil
}

func scanTenant(row rowScanner) (*domain.Tenant, error) {
	var t domain.Tenant
	var email, phone sql.NullString
	var metadata []byte

	err := row.Scan(
		&t.TenantID,
		&t.TenantName,
		&t.Domain,
		&email,
		&phone,
		&t.Status,
		&metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		t.Email = email.String
	}
	if phone.Valid {
		t.Phone = phone.String
	}
	if len(metadata) > 0 {
		t.Metadata = metadata
	}
	return &t, nil
}
