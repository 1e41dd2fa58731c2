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

// MemoryRecommendationsRepository 内存维护建议Repository（开发模式，无数据库时使用）
// 与 Postgres 实现保持同一幂等契约：同一住宅的未解决建议按 description 去重，
// 重复创建返回 ("", nil)
type MemoryRecommendationsRepository struct {
	mu   sync.RWMutex
	recs map[string]*domain.MaintenanceRecommendation // key: recommendation_id
}

// NewMemoryRecommendationsRepository 创建内存维护建议Repository
func NewMemoryRecommendationsRepository() *MemoryRecommendationsRepository {
	return &MemoryRecommendationsRepository{
		recs: make(map[string]*domain.MaintenanceRecommendation),
	}
}

var _ RecommendationsRepository = (*MemoryRecommendationsRepository)(nil)

// GetRecommendation 获取单条维护建议
func (r *MemoryRecommendationsRepository) GetRecommendation(ctx context.Context, tenantID, recommendationID string) (*domain.MaintenanceRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[recommendationID]
	if !ok || rec.TenantID != tenantID {
		return nil, fmt.Errorf("recommendation not found: %s", recommendationID)
	}
	copied := *rec
	return &copied, nil
}

// ListOpenByHouse 获取住宅的全部未解决建议
func (r *MemoryRecommendationsRepository) ListOpenByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.MaintenanceRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var recs []*domain.MaintenanceRecommendation
	for _, rec := range r.recs {
		if rec.TenantID != tenantID || rec.HouseID != houseID || rec.IsResolved {
			continue
		}
		copied := *rec
		recs = append(recs, &copied)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

// ListByHouse 批量查询维护建议（支持过滤和分页）
func (r *MemoryRecommendationsRepository) ListByHouse(ctx context.Context, tenantID, houseID string, filters *RecommendationFilters, page, size int) ([]*domain.MaintenanceRecommendation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.MaintenanceRecommendation
	for _, rec := range r.recs {
		if rec.TenantID != tenantID || rec.HouseID != houseID {
			continue
		}
		if filters != nil {
			switch filters.Status {
			case "open":
				if rec.IsResolved {
					continue
				}
			case "resolved":
				if !rec.IsResolved {
					continue
				}
			}
			if filters.RiskLevel != "" && string(rec.RiskLevel) != filters.RiskLevel {
				continue
			}
		}
		copied := *rec
		matched = append(matched, &copied)
	}

	// 与 Postgres 实现同序：risk_level 优先级、同级 created_at 倒序
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].RiskLevel.Rank() != matched[j].RiskLevel.Rank() {
			return matched[i].RiskLevel.Rank() < matched[j].RiskLevel.Rank()
		}
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
		return []*domain.MaintenanceRecommendation{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// CreateRecommendation 创建维护建议
// 同住宅已有同 description 的未解决建议时返回 ("", nil)
func (r *MemoryRecommendationsRepository) CreateRecommendation(ctx context.Context, tenantID string, rec *domain.MaintenanceRecommendation) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	if rec.HouseID == "" {
		return "", fmt.Errorf("house_id is required")
	}
	if rec.Description == "" {
		return "", fmt.Errorf("description is required")
	}
	if !domain.ValidRiskLevel(rec.RiskLevel) {
		return "", fmt.Errorf("invalid risk_level: %q", rec.RiskLevel)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.recs {
		if existing.HouseID == rec.HouseID && !existing.IsResolved && existing.Description == rec.Description {
			return "", nil
		}
	}

	id := rec.RecommendationID
	if id == "" {
		id = uuid.NewString()
	}

	copied := *rec
	copied.RecommendationID = id
	copied.TenantID = tenantID
	copied.IsResolved = false
	copied.ResolvedAt = nil
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	r.recs[id] = &copied
	return id, nil
}

// ResolveRecommendation 标记建议已解决
func (r *MemoryRecommendationsRepository) ResolveRecommendation(ctx context.Context, tenantID, recommendationID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.recs[recommendationID]
	if !ok || existing.TenantID != tenantID || existing.IsResolved {
		return fmt.Errorf("recommendation not found or already resolved: %s", recommendationID)
	}
	t := at
	existing.IsResolved = true
	existing.ResolvedAt = &t
	return nil
}
