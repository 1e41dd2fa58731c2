package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"housecare-data/internal/domain"
	"housecare-data/internal/engine"
	"housecare-data/internal/repository"
	"housecare-data/internal/store"

	"go.uber.org/zap"
)

// 评分缓存键前缀与有效期
const (
	scoreCacheKeyPrefix = "house-health:score:"
	scoreCacheTTL       = 24 * time.Hour
)

// HealthService 住宅健康评分服务
// 编排：读取住宅+部件 -> 引擎重算 -> 回写评分 -> 建议差分落库 -> 刷新缓存
type HealthService struct {
	houses  repository.HousesRepository
	comps   repository.ComponentsRepository
	recs    repository.RecommendationsRepository
	eng     *engine.Engine
	cache   store.KV
	logger  *zap.Logger
	nowFn   func() time.Time // 测试注入
}

// NewHealthService 创建健康评分服务
func NewHealthService(
	houses repository.HousesRepository,
	comps repository.ComponentsRepository,
	recs repository.RecommendationsRepository,
	eng *engine.Engine,
	cache store.KV,
	logger *zap.Logger,
) *HealthService {
	return &HealthService{
		houses: houses,
		comps:  comps,
		recs:   recs,
		eng:    eng,
		cache:  cache,
		logger: logger,
		nowFn:  time.Now,
	}
}

// HouseScoreView 评分查询响应（缓存的也是这个结构的 JSON）
type HouseScoreView struct {
	HouseID        string         `json:"house_id"`
	OverallScore   int            `json:"overall_score"`
	CategoryScores map[string]int `json:"category_scores"`
	AgeDeduction   int            `json:"age_deduction"`
	StructureBonus int            `json:"structure_bonus"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// RecomputeResult 一次重算的执行摘要
type RecomputeResult struct {
	Score        *HouseScoreView `json:"score"`
	CreatedCount int             `json:"created_count"`
	SkippedCount int             `json:"skipped_count"` // 并发竞争下已被对方创建的条数
	OpenCount    int             `json:"open_count"`
}

// RecomputeHouse 重算住宅健康评分并差分建议
//
// 建议创建不做事务包裹：CreateRecommendation 的唯一索引空操作语义
// 保证并发重算收敛到同一集合，逐条失败只影响该条
func (s *HealthService) RecomputeHouse(ctx context.Context, tenantID, houseID string) (*RecomputeResult, error) {
	house, err := s.houses.GetHouse(ctx, tenantID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load house: %w", err)
	}
	components, err := s.comps.ListComponentsByHouse(ctx, tenantID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load components: %w", err)
	}

	now := s.nowFn()
	result, err := s.eng.Recompute(house, components, now)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute house %s: %w", houseID, err)
	}

	if err := s.houses.UpdateHouseScore(ctx, tenantID, houseID, result.OverallScore, now); err != nil {
		return nil, fmt.Errorf("failed to persist house score: %w", err)
	}

	existing, err := s.recs.ListOpenByHouse(ctx, tenantID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open recommendations: %w", err)
	}
	diff := engine.Reconcile(result.Recommendations, existing)

	created, skipped := 0, 0
	for _, cand := range diff.ToCreate {
		id, err := s.recs.CreateRecommendation(ctx, tenantID, &domain.MaintenanceRecommendation{
			HouseID:           houseID,
			ComponentID:       cand.ComponentID,
			RiskLevel:         cand.RiskLevel,
			Description:       cand.Description,
			RecommendedAction: cand.RecommendedAction,
			CreatedAt:         now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create recommendation: %w", err)
		}
		if id == "" {
			skipped++
			continue
		}
		created++
	}

	view := s.scoreView(houseID, result, now)
	s.cacheScore(ctx, houseID, view)

	s.logger.Info("House health recomputed",
		zap.String("tenant_id", tenantID),
		zap.String("house_id", houseID),
		zap.Int("overall_score", result.OverallScore),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)

	return &RecomputeResult{
		Score:        view,
		CreatedCount: created,
		SkippedCount: skipped,
		OpenCount:    len(diff.Unchanged) + created,
	}, nil
}

// GetHouseScore 查询住宅健康评分
// 缓存命中直接返回；未命中时按需重算（兼顾首次查询和缓存失效）
func (s *HealthService) GetHouseScore(ctx context.Context, tenantID, houseID string) (*HouseScoreView, error) {
	if cached, err := s.cache.Get(ctx, scoreCacheKeyPrefix+houseID); err == nil {
		var view HouseScoreView
		if err := json.Unmarshal([]byte(cached), &view); err == nil {
			return &view, nil
		}
		// 缓存内容损坏时静默穿透重算
		s.logger.Warn("Corrupt score cache entry, recomputing", zap.String("house_id", houseID))
	}

	result, err := s.RecomputeHouse(ctx, tenantID, houseID)
	if err != nil {
		return nil, err
	}
	return result.Score, nil
}

// ListRecommendations 查询住宅的维护建议
func (s *HealthService) ListRecommendations(ctx context.Context, tenantID, houseID string, filters *repository.RecommendationFilters, page, size int) ([]*domain.MaintenanceRecommendation, int, error) {
	if tenantID == "" || houseID == "" {
		return nil, 0, fmt.Errorf("tenant_id and house_id are required")
	}
	return s.recs.ListByHouse(ctx, tenantID, houseID, filters, page, size)
}

// ResolveRecommendation 标记建议已解决
// 解决不触发重算：下一次重算时同描述问题若仍存在会重新创建
func (s *HealthService) ResolveRecommendation(ctx context.Context, tenantID, recommendationID string) error {
	if err := s.recs.ResolveRecommendation(ctx, tenantID, recommendationID, s.nowFn()); err != nil {
		return err
	}
	s.logger.Info("Recommendation resolved",
		zap.String("tenant_id", tenantID),
		zap.String("recommendation_id", recommendationID),
	)
	return nil
}

func (s *HealthService) scoreView(houseID string, result *engine.ScoreResult, now time.Time) *HouseScoreView {
	categories := make(map[string]int, len(result.CategoryScores))
	for cat, score := range result.CategoryScores {
		categories[string(cat)] = score
	}
	return &HouseScoreView{
		HouseID:        houseID,
		OverallScore:   result.OverallScore,
		CategoryScores: categories,
		AgeDeduction:   result.AgeDeduction,
		StructureBonus: result.StructureBonus,
		UpdatedAt:      now,
	}
}

// cacheScore 评分缓存只作加速，失败不影响主流程
func (s *HealthService) cacheScore(ctx context.Context, houseID string, view *HouseScoreView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, scoreCacheKeyPrefix+houseID, string(data), scoreCacheTTL); err != nil {
		s.logger.Warn("Failed to cache house score",
			zap.String("house_id", houseID),
			zap.Error(err),
		)
	}
}
