package engine

import "housecare-data/internal/domain"

// ReconcileResult 候选与已持久化建议的差分结果
type ReconcileResult struct {
	// ToCreate 需要新建的候选（调用方以 is_resolved=false 落库）
	ToCreate []Candidate
	// Unchanged 已有未解决建议命中候选、保持原样的记录
	Unchanged []*domain.MaintenanceRecommendation
}

// Reconcile 把合成候选并入已持久化的建议集合
//
// 有意做成 description 的集合成员差分，而不是完整 upsert：
// 已存在记录的内容（费用估算、用户批注等）绝不被重算改写，
// 只有人工 resolve 或新文案才会改变持久化状态。
//
// 只看未解决记录——已解决的记录不阻止再次创建，修好后复发的问题会被重新标记。
// 同一轮合成产出的重复候选也在这里去重（进程内集合），
// 并发重算之间的竞争由存储层的部分唯一索引兜底（冲突按成功处理）
func Reconcile(candidates []Candidate, existing []*domain.MaintenanceRecommendation) ReconcileResult {
	open := make(map[string]*domain.MaintenanceRecommendation, len(existing))
	for _, rec := range existing {
		if rec.IsResolved {
			continue
		}
		open[rec.Description] = rec
	}

	var result ReconcileResult
	matched := make(map[string]bool)
	created := make(map[string]bool)

	for _, cand := range candidates {
		if rec, ok := open[cand.Description]; ok {
			if !matched[cand.Description] {
				matched[cand.Description] = true
				result.Unchanged = append(result.Unchanged, rec)
			}
			continue
		}
		if created[cand.Description] {
			continue
		}
		created[cand.Description] = true
		result.ToCreate = append(result.ToCreate, cand)
	}

	return result
}
