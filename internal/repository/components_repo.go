package repository

import (
	"context"

	"housecare-data/internal/domain"
)

// ComponentsRepository 住宅部件Repository接口
// 部件的写操作会触发健康重算（由 Service 层编排）
type ComponentsRepository interface {
	// GetComponent 获取部件
	GetComponent(ctx context.Context, tenantID, componentID string) (*domain.Component, error)

	// ListComponentsByHouse 获取住宅的全部部件（引擎输入，实践上最多几百条）
	ListComponentsByHouse(ctx context.Context, tenantID, houseID string) ([]*domain.Component, error)

	// CreateComponent 创建部件
	CreateComponent(ctx context.Context, tenantID string, c *domain.Component) (string, error)

	// BulkCreateComponents 批量创建部件（Excel 导入用）
	BulkCreateComponents(ctx context.Context, tenantID string, comps []*domain.Component) ([]string, error)

	// UpdateComponent 更新部件
	UpdateComponent(ctx context.Context, tenantID, componentID string, c *domain.Component) error

	// DeleteComponent 删除部件
	DeleteComponent(ctx context.Context, tenantID, componentID string) error
}
