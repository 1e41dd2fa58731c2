package repository

import (
	"context"

	"housecare-data/internal/domain"
)

// TenantsRepository 租户Repository接口（平台级，仅管理端使用）
type TenantsRepository interface {
	// GetTenant 获取租户
	GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// GetTenantByDomain 按域名获取租户
	GetTenantByDomain(ctx context.Context, dom string) (*domain.Tenant, error)

	// ListTenants 列出全部租户
	ListTenants(ctx context.Context) ([]*domain.Tenant, error)

	// CreateTenant 创建租户
	CreateTenant(ctx context.Context, t *domain.Tenant) (string, error)
}
