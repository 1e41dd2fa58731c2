package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"housecare-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryComponentsRepository 内存住宅部件Repository（开发模式，无数据库时使用）
type MemoryComponentsRepository struct {
	mu         sync.RWMutex
	components map[string]*domain.Component // key: component_id
}

// NewMemoryComponentsRepository 创建内存部件Repository
func NewMemoryComponentsRepository() *MemoryComponentsRepository {
	return &MemoryComponentsRepository{
		components: make(map[string]*domain.Component),
	}
}

var _ ComponentsRepository = (*MemoryComponentsRepository)(nil)

// GetComponent 获取部件
func (r *MemoryComponentsRepository) GetComponent(ctx context.Context, tenantID, componentID string) (*domain.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[componentID]
	if !ok || c.TenantID != tenantID {
		return nil, fmt.Errorf("component not found: %s", componentID)
	}
	copied := *c
	return &copied, nil
}

// ListComponentsByHouse 获取住宅的全部部件
func (r *MemoryComponentsRepository) ListComponentsByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var comps []*domain.Component
	for _, c := range r.components {
		if c.TenantID != tenantID || c.HouseID != houseID {
			continue
		}
		copied := *c
		comps = append(comps, &copied)
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].Category != comps[j].Category {
			return comps[i].Category < comps[j].Category
		}
		return comps[i].ComponentName < comps[j].ComponentName
	})
	return comps, nil
}

// CreateComponent 创建部件
func (r *MemoryComponentsRepository) CreateComponent(ctx context.Context, tenantID string, c *domain.Component) (string, error) {
	if err := validateComponent(tenantID, c); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(tenantID, c), nil
}

// BulkCreateComponents 批量创建部件
func (r *MemoryComponentsRepository) BulkCreateComponents(ctx context.Context, tenantID string, comps []*domain.Component) ([]string, error) {
	for _, c := range comps {
		if err := validateComponent(tenantID, c); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(comps))
	for _, c := range comps {
		ids = append(ids, r.insertLocked(tenantID, c))
	}
	return ids, nil
}

func (r *MemoryComponentsRepository) insertLocked(tenantID string, c *domain.Component) string {
	id := c.ComponentID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	copied := *c
	copied.ComponentID = id
	copied.TenantID = tenantID
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.components[id] = &copied
	return id
}

// UpdateComponent 更新部件
func (r *MemoryComponentsRepository) UpdateComponent(ctx context.Context, tenantID, componentID string, c *domain.Component) error {
	if c.Category != "" && !domain.ValidComponentCategory(c.Category) {
		return fmt.Errorf("invalid category: %q", c.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.components[componentID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("component not found: %s", componentID)
	}

	if c.Category != "" {
		existing.Category = c.Category
	}
	if c.ComponentName != "" {
		existing.ComponentName = c.ComponentName
	}
	if c.ConditionScore != nil {
		s := *c.ConditionScore
		existing.ConditionScore = &s
	}
	if c.InstalledDate != nil {
		t := *c.InstalledDate
		existing.InstalledDate = &t
	}
	if c.ExpectedLifespanYears != nil {
		y := *c.ExpectedLifespanYears
		existing.ExpectedLifespanYears = &y
	}
	if c.WarrantyExpiryDate != nil {
		t := *c.WarrantyExpiryDate
		existing.WarrantyExpiryDate = &t
	}
	if c.LastInspectionDate != nil {
		t := *c.LastInspectionDate
		existing.LastInspectionDate = &t
	}
	existing.UpdatedAt = time.Now()
	return nil
}

// DeleteComponent 删除部件
func (r *MemoryComponentsRepository) DeleteComponent(ctx context.Context, tenantID, componentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.components[componentID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("component not found: %s", componentID)
	}
	delete(r.components, componentID)
	return nil
}
