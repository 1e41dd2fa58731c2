package repository

import (
	"context"

	"housecare-data/internal/domain"
)

// CustomerFilters 顾客查询过滤器
type CustomerFilters struct {
	Status  string // 'active'/'archived'
	Keyword string // 姓名/假名/电话模糊匹配
}

// CustomersRepository 顾客Repository接口
type CustomersRepository interface {
	// GetCustomer 获取顾客
	GetCustomer(ctx context.Context, tenantID, customerID string) (*domain.Customer, error)

	// ListCustomers 批量查询顾客（支持过滤和分页）
	ListCustomers(ctx context.Context, tenantID string, filters *CustomerFilters, page, size int) ([]*domain.Customer, int, error)

	// CreateCustomer 创建顾客
	CreateCustomer(ctx context.Context, tenantID string, c *domain.Customer) (string, error)

	// UpdateCustomer 更新顾客
	UpdateCustomer(ctx context.Context, tenantID, customerID string, c *domain.Customer) error
}
