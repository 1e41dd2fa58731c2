package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryCustomersRepository 内存顾客Repository（开发模式，无数据库时使用）
type MemoryCustomersRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

// NewMemoryCustomersRepository 创建内存顾客Repository
func NewMemoryCustomersRepository() *MemoryCustomersRepository {
	return &MemoryCustomersRepository{
		customers: make(map[string]*domain.Customer),
	}
}

var _ CustomersRepository = (*MemoryCustomersRepository)(nil)

// GetCustomer 获取顾客
func (r *MemoryCustomersRepository) GetCustomer(ctx context.Context, tenantID, customerID string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[customerID]
	if !ok || c.TenantID != tenantID {
		return nil, fmt.Errorf("customer not found: %s", customerID)
	}
	copied := *c
	return &copied, nil
}

// ListCustomers 批量查询顾客（支持过滤和分页）
func (r *MemoryCustomersRepository) ListCustomers(ctx context.Context, tenantID string, filters *CustomerFilters, page, size int) ([]*domain.Customer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Customer
	for _, c := range r.customers {
		if c.TenantID != tenantID {
			continue
		}
		if filters != nil {
			if filters.Status != "" && c.Status != filters.Status {
				continue
			}
			if filters.Keyword != "" {
				kw := strings.ToLower(filters.Keyword)
				if !strings.Contains(strings.ToLower(c.CustomerName), kw) &&
					!strings.Contains(strings.ToLower(c.Kana), kw) &&
					!strings.Contains(c.Phone, filters.Keyword) {
					continue
				}
			}
		}
		copied := *c
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []*domain.Customer{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// CreateCustomer 创建顾客
func (r *MemoryCustomersRepository) CreateCustomer(ctx context.Context, tenantID string, c *domain.Customer) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	if c.CustomerName == "" {
		return "", fmt.Errorf("customer_name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.CustomerID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	copied := *c
	copied.CustomerID = id
	copied.TenantID = tenantID
	if copied.Status == "" {
		copied.Status = "active"
	}
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.customers[id] = &copied
	return id, nil
}

// UpdateCustomer 更新顾客
func (r *MemoryCustomersRepository) UpdateCustomer(ctx context.Context, tenantID, customerID string, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.customers[customerID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("customer not found: %s", customerID)
	}

	if c.CustomerName != "" {
		existing.CustomerName = c.CustomerName
	}
	if c.Kana != "" {
		existing.Kana = c.Kana
	}
	if c.Email != "" {
		existing.Email = c.Email
	}
	if c.Phone != "" {
		existing.Phone = c.Phone
	}
	if c.Address != "" {
		existing.Address = c.Address
	}
	if c.Status != "" {
		existing.Status = c.Status
	}
	existing.UpdatedAt = time.Now()
	return nil
}
