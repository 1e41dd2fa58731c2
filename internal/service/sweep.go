package service

import (
	"context"
	"time"

	"housecare-data/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepScheduler 健康评分定时巡检
// 时间推移本身会改变评分（寿命衰减、保证到期、点检超期），
// 所以即使没有任何写操作，也要周期性全量重算
type SweepScheduler struct {
	houses   repository.HousesRepository
	health   *HealthService
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewSweepScheduler 创建定时巡检
func NewSweepScheduler(houses repository.HousesRepository, health *HealthService, schedule string, logger *zap.Logger) *SweepScheduler {
	return &SweepScheduler{
		houses:   houses,
		health:   health,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start 按 cron 表达式启动巡检
func (s *SweepScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Health sweep scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop 停止巡检，等待运行中的任务结束
func (s *SweepScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Health sweep scheduler stopped")
}

// RunOnce 执行一轮全量重算
// 逐户串行执行，单户失败只记日志不中断本轮
func (s *SweepScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	started := time.Now()
	targets, err := s.houses.ListSweepTargets(ctx)
	if err != nil {
		s.logger.Error("Health sweep failed to list targets", zap.Error(err))
		return
	}

	succeeded, failed := 0, 0
	for _, t := range targets {
		if _, err := s.health.RecomputeHouse(ctx, t.TenantID, t.HouseID); err != nil {
			s.logger.Error("Health sweep recompute failed",
				zap.String("tenant_id", t.TenantID),
				zap.String("house_id", t.HouseID),
				zap.Error(err),
			)
			failed++
			continue
		}
		succeeded++
	}

	s.logger.Info("Health sweep finished",
		zap.Int("total", len(targets)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(started)),
	)
}
