package domain

import (
	"fmt"
	"time"
)

// StructureType 住宅结构类型
type StructureType string

const (
	StructureWood    StructureType = "wood"    // 木造
	StructureSteel   StructureType = "steel"   // 钢骨造
	StructureRC      StructureType = "rc"      // 钢筋混凝土造
	StructureSRC     StructureType = "src"     // 钢骨钢筋混凝土造
	StructureUnknown StructureType = "unknown" // 不明
)

// ValidStructureType 校验结构类型枚举
// 非法枚举应在边界层拒绝，引擎假定输入已校验
func ValidStructureType(s StructureType) bool {
	switch s {
	case StructureWood, StructureSteel, StructureRC, StructureSRC, StructureUnknown:
		return true
	}
	return false
}

// ParseStructureType 解析结构类型（空串视为 unknown）
func ParseStructureType(s string) (StructureType, error) {
	if s == "" {
		return StructureUnknown, nil
	}
	st := StructureType(s)
	if !ValidStructureType(st) {
		return "", fmt.Errorf("invalid structure_type: %q", s)
	}
	return st, nil
}

// House 住宅领域模型（对应 houses 表）
type House struct {
	// 主键
	HouseID string `db:"house_id"` // UUID, PRIMARY KEY

	// 租户
	TenantID string `db:"tenant_id"` // UUID, NOT NULL, FK to tenants

	// 归属顾客
	CustomerID string `db:"customer_id"` // UUID, NOT NULL, FK to customers

	// 基本信息
	HouseName string `db:"house_name"` // VARCHAR(100), NOT NULL（如"○○様邸"）
	Address   string `db:"address"`    // TEXT, nullable

	// 建筑信息
	BuiltYear     *int          `db:"built_year"`     // INT, nullable（竣工年）
	StructureType StructureType `db:"structure_type"` // VARCHAR(20), NOT NULL, DEFAULT 'unknown'

	// 健康评分（由引擎回写，非实体计算字段）
	OverallScore   *int       `db:"overall_score"`    // INT, nullable, 0-100
	ScoreUpdatedAt *time.Time `db:"score_updated_at"` // TIMESTAMPTZ, nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
