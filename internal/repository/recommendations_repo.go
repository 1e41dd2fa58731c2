package repository

import (
	"context"
	"time"

	"housecare-data/internal/domain"
)

// RecommendationFilters 维护建议查询过滤器
type RecommendationFilters struct {
	Status    string // 'open'/'resolved'，空串=全部
	RiskLevel string // 'high'/'medium'/'low'
}

// RecommendationsRepository 维护建议Repository接口
//
// 创建路径是 reconciler 幂等契约的存储侧一半：
// 并发重算撞上 (house_id, description) 部分唯一索引时按良性空操作处理
type RecommendationsRepository interface {
	// GetRecommendation 获取单条维护建议
	GetRecommendation(ctx context.Context, tenantID, recommendationID string) (*domain.MaintenanceRecommendation, error)

	// ListOpenByHouse 获取住宅的全部未解决建议（reconcile 的输入）
	ListOpenByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.MaintenanceRecommendation, error)

	// ListByHouse 批量查询维护建议（支持过滤和分页）
	// 排序固定为 risk_level（high < medium < low）、同级按 created_at 倒序
	ListByHouse(ctx context.Context, tenantID, houseID string, filters *RecommendationFilters, page, size int) ([]*domain.MaintenanceRecommendation, int, error)

	// CreateRecommendation 创建维护建议（is_resolved=false）
	// 撞上未解决描述的唯一索引时返回 ("", nil)：竞争对手已创建等价记录，视为成功
	CreateRecommendation(ctx context.Context, tenantID string, rec *domain.MaintenanceRecommendation) (string, error)

	// ResolveRecommendation 标记建议已解决（设置 resolved_at）
	// 独立的单记录读改写，与重算并发执行互不冲突
	ResolveRecommendation(ctx context.Context, tenantID, recommendationID string, at time.Time) error
}
