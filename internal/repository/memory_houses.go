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

// MemoryHousesRepository 内存住宅Repository（开发模式，无数据库时使用）
type MemoryHousesRepository struct {
	mu     sync.RWMutex
	houses map[string]*domain.House // key: house_id
}

// NewMemoryHousesRepository 创建内存住宅Repository
func NewMemoryHousesRepository() *MemoryHousesRepository {
	return &MemoryHousesRepository{
		houses: make(map[string]*domain.House),
	}
}

var _ HousesRepository = (*MemoryHousesRepository)(nil)

// GetHouse 获取住宅
func (r *MemoryHousesRepository) GetHouse(ctx context.Context, tenantID, houseID string) (*domain.House, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.houses[houseID]
	if !ok || h.TenantID != tenantID {
		return nil, fmt.Errorf("house not found: %s", houseID)
	}
	copied := *h
	return &copied, nil
}

// ListHouses 批量查询住宅（支持过滤和分页）
func (r *MemoryHousesRepository) ListHouses(ctx context.Context, tenantID string, filters *HouseFilters, page, size int) ([]*domain.House, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.House
	for _, h := range r.houses {
		if h.TenantID != tenantID {
			continue
		}
		if filters != nil {
			if filters.CustomerID != "" && h.CustomerID != filters.CustomerID {
				continue
			}
			if filters.StructureType != "" && string(h.StructureType) != filters.StructureType {
				continue
			}
			if filters.MaxScore != nil && (h.OverallScore == nil || *h.OverallScore > *filters.MaxScore) {
				continue
			}
			if filters.Keyword != "" {
				kw := strings.ToLower(filters.Keyword)
				if !strings.Contains(strings.ToLower(h.HouseName), kw) &&
					!strings.Contains(strings.ToLower(h.Address), kw) {
					continue
				}
			}
		}
		copied := *h
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
		return []*domain.House{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// CreateHouse 创建住宅
func (r *MemoryHousesRepository) CreateHouse(ctx context.Context, tenantID string, house *domain.House) (string, error) {
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

	r.mu.Lock()
	defer r.mu.Unlock()

	id := house.HouseID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	copied := *house
	copied.HouseID = id
	copied.TenantID = tenantID
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.houses[id] = &copied
	return id, nil
}

// UpdateHouse 更新住宅基本信息
func (r *MemoryHousesRepository) UpdateHouse(ctx context.Context, tenantID, houseID string, house *domain.House) error {
	if house.StructureType != "" && !domain.ValidStructureType(house.StructureType) {
		return fmt.Errorf("invalid structure_type: %q", house.StructureType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.houses[houseID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("house not found: %s", houseID)
	}

	if house.HouseName != "" {
		existing.HouseName = house.HouseName
	}
	if house.Address != "" {
		existing.Address = house.Address
	}
	if house.BuiltYear != nil {
		y := *house.BuiltYear
		existing.BuiltYear = &y
	}
	if house.StructureType != "" {
		existing.StructureType = house.StructureType
	}
	existing.UpdatedAt = time.Now()
	return nil
}

// DeleteHouse 删除住宅
func (r *MemoryHousesRepository) DeleteHouse(ctx context.Context, tenantID, houseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.houses[houseID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("house not found: %s", houseID)
	}
	delete(r.houses, houseID)
	return nil
}

// UpdateHouseScore 回写整体健康评分
func (r *MemoryHousesRepository) UpdateHouseScore(ctx context.Context, tenantID, houseID string, score int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.houses[houseID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("house not found: %s", houseID)
	}
	s := score
	t := at
	existing.OverallScore = &s
	existing.ScoreUpdatedAt = &t
	existing.UpdatedAt = time.Now()
	return nil
}

// ListSweepTargets 列出全部待巡检住宅（跨租户）
func (r *MemoryHousesRepository) ListSweepTargets(ctx context.Context) ([]SweepTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]SweepTarget, 0, len(r.houses))
	for _, h := range r.houses {
		targets = append(targets, SweepTarget{TenantID: h.TenantID, HouseID: h.HouseID})
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].TenantID != targets[j].TenantID {
			return targets[i].TenantID < targets[j].TenantID
		}
		return targets[i].HouseID < targets[j].HouseID
	})
	return targets, nil
}
