package repository

import (
	"context"
	"time"

	"housecare-data/internal/domain"
)

// HouseFilters 住宅查询过滤器
type HouseFilters struct {
	CustomerID    string // 归属顾客ID
	StructureType string // 结构类型：'wood'/'steel'/'rc'/'src'/'unknown'
	MaxScore      *int   // 只看 overall_score <= MaxScore 的住宅（维护营业用）
	Keyword       string // 住宅名/住所模糊匹配
}

// SweepTarget 定时巡检的重算对象（跨租户）
type SweepTarget struct {
	TenantID string
	HouseID  string
}

// HousesRepository 住宅Repository接口
type HousesRepository interface {
	// GetHouse 获取住宅
	GetHouse(ctx context.Context, tenantID, houseID string) (*domain.House, error)

	// ListHouses 批量查询住宅（支持过滤和分页）
	ListHouses(ctx context.Context, tenantID string, filters *HouseFilters, page, size int) ([]*domain.House, int, error)

	// CreateHouse 创建住宅
	CreateHouse(ctx context.Context, tenantID string, house *domain.House) (string, error)

	// UpdateHouse 更新住宅基本信息（不触碰评分字段）
	UpdateHouse(ctx context.Context, tenantID, houseID string, house *domain.House) error

	// DeleteHouse 删除住宅
	DeleteHouse(ctx context.Context, tenantID, houseID string) error

	// UpdateHouseScore 回写引擎计算出的整体健康评分
	UpdateHouseScore(ctx context.Context, tenantID, houseID string, score int, at time.Time) error

	// ListSweepTargets 列出全部待巡检住宅（定时全量重算用，跨租户）
	ListSweepTargets(ctx context.Context) ([]SweepTarget, error)
}
