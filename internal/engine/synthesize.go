package engine

import (
	"fmt"
	"time"

	"housecare-data/internal/domain"
)

// Candidate 合成出的维护建议候选（尚未持久化）
type Candidate struct {
	ComponentID       *string          `json:"component_id,omitempty"`
	RiskLevel         domain.RiskLevel `json:"risk_level"`
	Description       string           `json:"description"`
	RecommendedAction *string          `json:"recommended_action,omitempty"`
}

// 建议措施文案（与 description 不同，不参与去重）
const (
	actionReplaceEstimate = "専門業者による詳細調査と交換・補修の見積もり取得をお勧めします"
	actionFocusInspection = "次回定期点検時に重点的な確認をお勧めします"
	actionWarrantyReview  = "保証内容の確認と延長・更新の検討をお勧めします"
	actionScheduleCheck   = "早めの定期点検の実施をお勧めします"
	actionFullDiagnosis   = "ホームインスペクション（住宅診断）の実施をお勧めします"
)

// Synthesize 由当前部件状态和评分结果合成维护建议候选
//
// 每条规则对每个部件独立判定，一个部件可产出多条候选；
// 风险等级在这里是唯一出处，调用方不得根据得分另行推导。
// 纯函数：不读不写已持久化的建议
func (e *Engine) Synthesize(components []*domain.Component, result *ScoreResult, now time.Time) []Candidate {
	var candidates []Candidate

	for _, c := range components {
		label := c.Category.Label()
		componentID := c.ComponentID
		score := e.ComponentScore(c, now)

		// 规则1/2：部件得分过低
		switch {
		case score < e.policy.HighScoreThreshold:
			candidates = append(candidates, Candidate{
				ComponentID:       &componentID,
				RiskLevel:         domain.RiskHigh,
				Description:       fmt.Sprintf("%sの劣化が進んでいます（推定残寿命わずか）", label),
				RecommendedAction: ptr(actionReplaceEstimate),
			})
		case score < e.policy.MediumScoreThreshold:
			candidates = append(candidates, Candidate{
				ComponentID:       &componentID,
				RiskLevel:         domain.RiskMedium,
				Description:       fmt.Sprintf("%sの点検・補修を検討してください", label),
				RecommendedAction: ptr(actionFocusInspection),
			})
		}

		// 规则3：保证临期或已过期
		if c.WarrantyExpiryDate != nil {
			window := now.AddDate(0, 0, e.policy.WarrantyWindowDays)
			if c.WarrantyExpiryDate.Before(window) {
				candidates = append(candidates, Candidate{
					ComponentID:       &componentID,
					RiskLevel:         domain.RiskMedium,
					Description:       fmt.Sprintf("%sの保証期限が近づいています／切れています", label),
					RecommendedAction: ptr(actionWarrantyReview),
				})
			}
		}

		// 规则4：点检缺失/超期
		if e.inspectionStale(c, now) {
			candidates = append(candidates, Candidate{
				ComponentID:       &componentID,
				RiskLevel:         domain.RiskLow,
				Description:       fmt.Sprintf("%sの点検が長期間行われていません", label),
				RecommendedAction: ptr(actionScheduleCheck),
			})
		}
	}

	// 住宅级规则：整体得分过低
	if result.OverallScore < e.policy.OverallAlertThreshold {
		candidates = append(candidates, Candidate{
			RiskLevel:         domain.RiskHigh,
			Description:       "住宅全体の健全性が低下しています。専門家による総合診断を推奨します",
			RecommendedAction: ptr(actionFullDiagnosis),
		})
	}

	return candidates
}

func ptr[T any](v T) *T {
	return &v
}
