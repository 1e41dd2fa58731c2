package engine

import (
	"fmt"
	"math"
	"time"

	"housecare-data/internal/domain"
)

// HouseContext 住宅聚合评分的上下文（建龄/结构调整用）
type HouseContext struct {
	BuiltYear     *int
	StructureType domain.StructureType
}

// ScoreResult 住宅健康评分结果
// 临时计算产物，不作为实体持久化；overall_score 由调用方回写 houses 表
type ScoreResult struct {
	OverallScore    int                                  `json:"overall_score"`
	CategoryScores  map[domain.ComponentCategory]int     `json:"category_scores"`
	AgeDeduction    int                                  `json:"age_deduction"`
	StructureBonus  int                                  `json:"structure_bonus"`
	Recommendations []Candidate                          `json:"recommendations"`
}

// Aggregate 聚合部件得分为类别得分和住宅整体得分
//
// 两段式计算（有意拆分，便于前端分别展示"部件状态"与"建龄/结构影响"）：
//  1. baseScore = 各类别得分的算术平均；类别得分 = 类内部件得分的四舍五入平均。
//     无部件的类别不计入（缺数据 ≠ 状态差，是数据质量问题，归调用方关心）；
//     一个部件都没有的住宅 baseScore = 100
//  2. overall = clamp(baseScore - 建龄扣分 + 结构加减分, 0, 100)
//
// 枚举非法时整体快速失败，避免掩盖数据损坏
func (e *Engine) Aggregate(components []*domain.Component, hc HouseContext, now time.Time) (*ScoreResult, error) {
	if !domain.ValidStructureType(hc.StructureType) {
		return nil, fmt.Errorf("invalid structure_type: %q", hc.StructureType)
	}

	// 按类别分组求平均
	sums := make(map[domain.ComponentCategory]int)
	counts := make(map[domain.ComponentCategory]int)
	for _, c := range components {
		if !domain.ValidComponentCategory(c.Category) {
			return nil, fmt.Errorf("invalid category: %q (component_id=%s)", c.Category, c.ComponentID)
		}
		sums[c.Category] += e.ComponentScore(c, now)
		counts[c.Category]++
	}

	categoryScores := make(map[domain.ComponentCategory]int, len(sums))
	for cat, sum := range sums {
		categoryScores[cat] = int(math.Round(float64(sum) / float64(counts[cat])))
	}

	// baseScore：类别得分平均；无部件时视为未知但不扣分
	baseScore := 100.0
	if len(categoryScores) > 0 {
		total := 0
		for _, s := range categoryScores {
			total += s
		}
		baseScore = float64(total) / float64(len(categoryScores))
	}

	ageDeduction := e.ageDeduction(hc.BuiltYear, now)
	structureBonus := e.policy.StructureBonus[hc.StructureType]

	overall := clampScore(int(math.Round(baseScore)) - ageDeduction + structureBonus)

	return &ScoreResult{
		OverallScore:   overall,
		CategoryScores: categoryScores,
		AgeDeduction:   ageDeduction,
		StructureBonus: structureBonus,
	}, nil
}

// ageDeduction 建龄扣分：每十年扣 AgeDeductionPerDecade 分，上限 AgeDeductionCap
func (e *Engine) ageDeduction(builtYear *int, now time.Time) int {
	if builtYear == nil {
		return 0
	}
	decades := (now.Year() - *builtYear) / 10
	if decades <= 0 {
		return 0
	}
	d := decades * e.policy.AgeDeductionPerDecade
	if d > e.policy.AgeDeductionCap {
		d = e.policy.AgeDeductionCap
	}
	return d
}

// Recompute 引擎对外的唯一入口：评分 + 合成建议候选
// 纯函数（相对输入而言）；与已持久化建议的差分由 Reconcile 单独完成
func (e *Engine) Recompute(house *domain.House, components []*domain.Component, now time.Time) (*ScoreResult, error) {
	hc := HouseContext{
		BuiltYear:     house.BuiltYear,
		StructureType: house.StructureType,
	}
	result, err := e.Aggregate(components, hc, now)
	if err != nil {
		return nil, err
	}
	result.Recommendations = e.Synthesize(components, result, now)
	return result, nil
}
