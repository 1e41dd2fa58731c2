package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryTenantsRepository 内存租户Repository（开发模式，无数据库时使用）
type MemoryTenantsRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryTenantsRepository 创建内存租户Repository
func NewMemoryTenantsRepository() *MemoryTenantsRepository {
	return &MemoryTenantsRepository{
		tenants: make(map[string]*domain.Tenant),
	}
}

var _ TenantsRepository = (*MemoryTenantsRepository)(nil)

// GetTenant 获取租户
func (r *MemoryTenantsRepository) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant not found: %s", tenantID)
	}
	copied := *t
	return &copied, nil
}

// GetTenantByDomain 按域名获取租户
func (r *MemoryTenantsRepository) GetTenantByDomain(ctx context.Context, dom string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tenants {
		if t.Domain == dom {
			copied := *t
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("tenant not found: %s", dom)
}

// ListTenants 列出全部租户
func (r *MemoryTenantsRepository) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenants := make([]*domain.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		copied := *t
		tenants = append(tenants, &copied)
	}
	return tenants, nil
}

// CreateTenant 创建租户
func (r *MemoryTenantsRepository) CreateTenant(ctx context.Context, t *domain.Tenant) (string, error) {
	if t.TenantName == "" {
		return "", fmt.Errorf("tenant_name is required")
	}
	if t.Domain == "" {
		return "", fmt.Errorf("domain is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tenants {
		if existing.Domain == t.Domain {
			return "", fmt.Errorf("domain already exists: %s", t.Domain)
		}
	}

	id := t.TenantID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	copied := *t
	copied.TenantID = id
	if copied.Status == "" {
		copied.Status = "active"
	}
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.tenants[id] = &copied
	return id, nil
}
