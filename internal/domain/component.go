package domain

import (
	"fmt"
	"time"
)

// ComponentCategory 住宅部件类别
type ComponentCategory string

const (
	CategoryRoof          ComponentCategory = "roof"           // 屋根
	CategoryExteriorWall  ComponentCategory = "exterior_wall"  // 外壁
	CategoryPlumbing      ComponentCategory = "plumbing"       // 配管
	CategoryElectrical    ComponentCategory = "electrical"     // 電気設備
	CategoryHVAC          ComponentCategory = "hvac"           // 空調設備
	CategoryFlooring      ComponentCategory = "flooring"       // 床
	CategoryWaterproofing ComponentCategory = "waterproofing"  // 防水
	CategoryOther         ComponentCategory = "other"          // その他
)

// ComponentCategories 全部类别（用于校验和展示）
var ComponentCategories = []ComponentCategory{
	CategoryRoof,
	CategoryExteriorWall,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryHVAC,
	CategoryFlooring,
	CategoryWaterproofing,
	CategoryOther,
}

// categoryLabels 类别的日文表示（推荐文案中使用）
var categoryLabels = map[ComponentCategory]string{
	CategoryRoof:          "屋根",
	CategoryExteriorWall:  "外壁",
	CategoryPlumbing:      "配管",
	CategoryElectrical:    "電気設備",
	CategoryHVAC:          "空調設備",
	CategoryFlooring:      "床",
	CategoryWaterproofing: "防水",
	CategoryOther:         "その他",
}

// ValidComponentCategory 校验部件类别枚举
func ValidComponentCategory(c ComponentCategory) bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseComponentCategory 解析部件类别
func ParseComponentCategory(s string) (ComponentCategory, error) {
	c := ComponentCategory(s)
	if !ValidComponentCategory(c) {
		return "", fmt.Errorf("invalid category: %q", s)
	}
	return c, nil
}

// Label 类别的日文表示
func (c ComponentCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Component 住宅部件领域模型（对应 components 表）
// 部件身份稳定，健康计算只读不改
type Component struct {
	// 主键
	ComponentID string `db:"component_id"` // UUID, PRIMARY KEY

	// 租户
	TenantID string `db:"tenant_id"` // UUID, NOT NULL, FK to tenants

	// 归属住宅
	HouseID string `db:"house_id"` // UUID, NOT NULL, FK to houses

	// 类别
	Category ComponentCategory `db:"category"` // VARCHAR(20), NOT NULL

	// 部件名称（如"南面屋根"、"1F給湯配管"）
	ComponentName string `db:"component_name"` // VARCHAR(100), NOT NULL

	// 状态评分（自报/点检得出，0-100，缺省视为全新）
	ConditionScore *int `db:"condition_score"` // INT, nullable, CHECK 0-100

	// 生命周期
	InstalledDate         *time.Time `db:"installed_date"`          // DATE, nullable
	ExpectedLifespanYears *float64   `db:"expected_lifespan_years"` // NUMERIC, nullable, > 0
	WarrantyExpiryDate    *time.Time `db:"warranty_expiry_date"`    // DATE, nullable
	LastInspectionDate    *time.Time `db:"last_inspection_date"`    // DATE, nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
