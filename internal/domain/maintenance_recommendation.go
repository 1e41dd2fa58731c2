package domain

import (
	"fmt"
	"time"
)

// RiskLevel 维护建议的风险等级
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// riskRank 排序用全序：high < medium < low
var riskRank = map[RiskLevel]int{
	RiskHigh:   0,
	RiskMedium: 1,
	RiskLow:    2,
}

// Rank 返回排序序号（high=0, medium=1, low=2）
func (r RiskLevel) Rank() int {
	if n, ok := riskRank[r]; ok {
		return n
	}
	return len(riskRank)
}

// ValidRiskLevel 校验风险等级枚举
func ValidRiskLevel(r RiskLevel) bool {
	_, ok := riskRank[r]
	return ok
}

// ParseRiskLevel 解析风险等级
func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(s)
	if !ValidRiskLevel(r) {
		return "", fmt.Errorf("invalid risk_level: %q", s)
	}
	return r, nil
}

// MaintenanceRecommendation 维护建议领域模型（对应 maintenance_recommendations 表）
//
// 生命周期：只由 reconciler 创建；只通过外部 resolve 操作关闭。
// 重算永远不会自动关闭未解决的建议（合成是无状态的，reconciler 只增不删）。
//
// 幂等不变式：同一住宅的未解决建议中 description 不重复，
// 由部分唯一索引保证：
//
//	CREATE UNIQUE INDEX uq_recommendations_open_description
//	ON maintenance_recommendations (house_id, description)
//	WHERE NOT is_resolved;
type MaintenanceRecommendation struct {
	// 主键
	RecommendationID string `db:"recommendation_id"` // UUID, PRIMARY KEY

	// 租户
	TenantID string `db:"tenant_id"` // UUID, NOT NULL, FK to tenants

	// 归属住宅
	HouseID string `db:"house_id"` // UUID, NOT NULL, FK to houses

	// 关联部件（住宅级建议为空）
	ComponentID *string `db:"component_id"` // UUID, nullable, FK to components

	// 风险等级
	RiskLevel RiskLevel `db:"risk_level"` // VARCHAR(10), NOT NULL ('high'/'medium'/'low')

	// 建议文案（未解决集合内的自然去重键）
	Description string `db:"description"` // TEXT, NOT NULL

	// 建议措施
	RecommendedAction *string `db:"recommended_action"` // TEXT, nullable

	// 期限与费用估算
	DueDate          *time.Time `db:"due_date"`           // DATE, nullable
	EstimatedCostMin *int64     `db:"estimated_cost_min"` // BIGINT, nullable（日元）
	EstimatedCostMax *int64     `db:"estimated_cost_max"` // BIGINT, nullable（日元）

	// 解决状态（is_resolved == true ⇔ resolved_at 非空）
	IsResolved bool       `db:"is_resolved"` // BOOLEAN, NOT NULL, DEFAULT false
	ResolvedAt *time.Time `db:"resolved_at"` // TIMESTAMPTZ, nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
}
