package engine

import "housecare-data/internal/domain"

// Policy 健康评分策略参数
// 阈值（50/70、90天、24个月等）是可调配置，不是语义不变式；
// 调用方可按保险/点检标准另行调参，默认值与产品当前策略一致
type Policy struct {
	// 部件衰减模型
	DecayWeight           float64 // 寿命占比满额时的扣分权重
	LifeFractionCap       float64 // 寿命占比上限（可超过 1，即超龄部件继续扣分）
	WarrantyPenalty       int     // 保证已过期扣分
	InspectionPenalty     int     // 点检缺失/超期扣分
	InspectionStaleMonths int     // 点检超期判定（月）

	// 建议合成阈值
	HighScoreThreshold    int // 部件得分低于该值 -> high
	MediumScoreThreshold  int // 部件得分低于该值 -> medium
	WarrantyWindowDays    int // 保证临期提醒窗口（天）
	OverallAlertThreshold int // 住宅整体得分低于该值 -> 住宅级 high

	// 住宅聚合调整
	AgeDeductionPerDecade int // 每十年建龄扣分
	AgeDeductionCap       int // 建龄扣分上限
	StructureBonus        map[domain.StructureType]int
}

// DefaultPolicy 当前产品策略
func DefaultPolicy() Policy {
	return Policy{
		DecayWeight:           40,
		LifeFractionCap:       1.5,
		WarrantyPenalty:       5,
		InspectionPenalty:     5,
		InspectionStaleMonths: 24,

		HighScoreThreshold:    50,
		MediumScoreThreshold:  70,
		WarrantyWindowDays:    90,
		OverallAlertThreshold: 50,

		AgeDeductionPerDecade: 2,
		AgeDeductionCap:       20,
		StructureBonus: map[domain.StructureType]int{
			domain.StructureRC:      5,
			domain.StructureSRC:     5,
			domain.StructureSteel:   0,
			domain.StructureWood:    -3,
			domain.StructureUnknown: 0,
		},
	}
}

// Engine 住宅健康与维护风险引擎
// 纯内存计算，无内部时钟（now 由调用方注入），可在任意 goroutine 上安全使用
type Engine struct {
	policy Policy
}

// New 创建引擎
func New(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// NewDefault 创建使用默认策略的引擎
func NewDefault() *Engine {
	return New(DefaultPolicy())
}
