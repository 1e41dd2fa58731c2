package engine

import (
	"math"
	"time"

	"housecare-data/internal/domain"
)

// hoursPerYear 按儒略年换算部件年龄（含闰年）
const hoursPerYear = 24 * 365.25

// ComponentScore 计算单个部件的健康得分（0-100）
//
// 三个独立的加法扣分项，便于单独推理和测试：
//  1. 寿命衰减：installed_date 和 expected_lifespan_years 同时存在时，
//     按 round(clamp(年龄/预期寿命, 0, cap) * 权重) 扣分
//  2. 保证过期：warranty_expiry_date 已过 -> 扣 WarrantyPenalty
//  3. 点检超期：last_inspection_date 缺失或超过 InspectionStaleMonths -> 扣 InspectionPenalty
//
// 缺失字段一律按"全新/未知即健康"处理，绝不报错；输入输出两端都做钳位
func (e *Engine) ComponentScore(c *domain.Component, now time.Time) int {
	score := 100
	if c.ConditionScore != nil {
		score = clampScore(*c.ConditionScore)
	}

	// 寿命衰减
	if c.InstalledDate != nil && c.ExpectedLifespanYears != nil && *c.ExpectedLifespanYears > 0 {
		ageYears := now.Sub(*c.InstalledDate).Hours() / hoursPerYear
		if ageYears < 0 {
			ageYears = 0
		}
		lifeFraction := ageYears / *c.ExpectedLifespanYears
		if lifeFraction > e.policy.LifeFractionCap {
			lifeFraction = e.policy.LifeFractionCap
		}
		score -= int(math.Round(lifeFraction * e.policy.DecayWeight))
	}

	// 保证过期
	if c.WarrantyExpiryDate != nil && c.WarrantyExpiryDate.Before(now) {
		score -= e.policy.WarrantyPenalty
	}

	// 点检超期
	if e.inspectionStale(c, now) {
		score -= e.policy.InspectionPenalty
	}

	return clampScore(score)
}

// inspectionStale 点检缺失或距今超过 InspectionStaleMonths 个月
func (e *Engine) inspectionStale(c *domain.Component, now time.Time) bool {
	if c.LastInspectionDate == nil {
		return true
	}
	staleBefore := now.AddDate(0, -e.policy.InspectionStaleMonths, 0)
	return c.LastInspectionDate.Before(staleBefore)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
