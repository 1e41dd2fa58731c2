package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresCustomersRepository 顾客Repository实现
type PostgresCustomersRepository struct {
	db *sql.DB
}

// NewPostgresCustomersRepository 创建顾客Repository
func NewPostgresCustomersRepository(db *sql.DB) *PostgresCustomersRepository {
	return &PostgresCustomersRepository{db: db}
}

// 确保实现了接口
var _ CustomersRepository = (*PostgresCustomersRepository)(nil)

const customerColumns = `
			customer_id::text,
			tenant_id::text,
			customer_name,
			kana,
			email,
			phone,
			address,
			status,
			created_at,
			updated_at`

// GetCustomer 获取顾客
func (r *PostgresCustomersRepository) GetCustomer(ctx context.Context, tenantID, customerID string) (*domain.Customer, error) {
	if tenantID == "" || customerID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1 AND customer_id = $2
	`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, tenantID, customerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// ListCustomers 批量查询顾客（支持过滤和分页）
func (r *PostgresCustomersRepository) ListCustomers(ctx context.Context, tenantID string, filters *CustomerFilters, page, size int) ([]*domain.Customer, int, error) {
	if tenantID == "" {
		return []*domain.Customer{}, 0, nil
	}

	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	argN := 2

	if filters != nil {
		if filters.Status != "" {
			where = append(where, fmt.Sprintf("status = $%d", argN))
			args = append(args, filters.Status)
			argN++
		}
		if filters.Keyword != "" {
			where = append(where, fmt.Sprintf("(customer_name ILIKE $%d OR kana ILIKE $%d OR phone ILIKE $%d)", argN, argN, argN))
			args = append(args, "%"+filters.Keyword+"%")
			argN++
		}
	}

	queryCount := `
		SELECT COUNT(*)
		FROM customers
		WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
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
		SELECT ` + customerColumns + `
		FROM customers
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)

	rows, err := r.db.QueryContext(ctx, query, argsList...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate customers: %w", err)
	}

	return customers, total, nil
}

// CreateCustomer 创建顾客
func (r *PostgresCustomersRepository) CreateCustomer(ctx context.Context, tenantID string, c *domain.Customer) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	if c.CustomerName == "" {
		return "", fmt.Errorf("customer_name is required")
	}
	status := c.Status
	if status == "" {
		status = "active"
	}

	id := c.CustomerID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO customers (
			customer_id, tenant_id, customer_name, kana, email, phone, address, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := r.db.ExecContext(ctx, query,
		id, tenantID, c.CustomerName,
		nullableString(c.Kana), nullableString(c.Email),
		nullableString(c.Phone), nullableString(c.Address),
		status,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return id, nil
}

// UpdateCustomer 更新顾客
func (r *PostgresCustomersRepository) UpdateCustomer(ctx context.Context, tenantID, customerID string, c *domain.Customer) error {
	if tenantID == "" || customerID == "" {
		return fmt.Errorf("tenant_id and customer_id are required")
	}

	query := `
		UPDATE customers
		SET customer_name = COALESCE(NULLIF($3, ''), customer_name),
		    kana = COALESCE(NULLIF($4, ''), kana),
		    email = COALESCE(NULLIF($5, ''), email),
		    phone = COALESCE(NULLIF($6, ''), phone),
		    address = COALESCE(NULLIF($7, ''), address),
		    status = COALESCE(NULLIF($8, ''), status),
		    updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = $1 AND customer_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID, customerID,
		c.CustomerName, c.Kana, c.Email, c.Phone, c.Address, c.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("customer not found: %s", customerID)
	}
	return nil
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	var kana, email, phone, address sql.NullString

	err := row.Scan(
		&c.CustomerID,
		&c.TenantID,
		&c.CustomerName,
		&kana,
		&email,
		&phone,
		&address,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if kana.Valid {
		c.Kana = kana.String
	}
	if email.Valid {
		c.Email = email.String
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	if address.Valid {
		c.Address = address.String
	}
	return &c, nil
}
