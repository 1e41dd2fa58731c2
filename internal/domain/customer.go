package domain

import "time"

// Customer 顾客领域模型（对应 customers 表）
// 工务店的施主/业主，一个顾客可拥有多套住宅
type Customer struct {
	// 主键
	CustomerID string `db:"customer_id"` // UUID, PRIMARY KEY

	// 租户
	TenantID string `db:"tenant_id"` // UUID, NOT NULL, FK to tenants

	// 基本信息
	CustomerName string `db:"customer_name"` // VARCHAR(100), NOT NULL
	Kana         string `db:"kana"`          // VARCHAR(100), nullable（片假名读音）
	Email        string `db:"email"`         // VARCHAR(255), nullable
	Phone        string `db:"phone"`         // VARCHAR(50), nullable
	Address      string `db:"address"`       // TEXT, nullable

	// 状态
	Status string `db:"status"` // VARCHAR(20), NOT NULL, DEFAULT 'active' ('active'/'archived')

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
