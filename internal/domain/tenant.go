package domain

import (
	"encoding/json"
	"time"
)

// Tenant 租户领域模型（对应 tenants 表）
// 一个租户 = 一家工务店（建筑公司），平台级数据
type Tenant struct {
	// 主键
	TenantID string `db:"tenant_id"` // UUID, PRIMARY KEY

	// 基本信息
	TenantName string `db:"tenant_name"` // VARCHAR(100), NOT NULL
	Domain     string `db:"domain"`      // VARCHAR(100), UNIQUE, NOT NULL
	Email      string `db:"email"`       // VARCHAR(255), nullable
	Phone      string `db:"phone"`       // VARCHAR(50), nullable

	// 状态
	Status string `db:"status"` // VARCHAR(20), NOT NULL, DEFAULT 'active' ('active'/'suspended')

	// 扩展信息
	Metadata json.RawMessage `db:"metadata"` // JSONB, nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
