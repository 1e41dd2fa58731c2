package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"housecare-data/internal/config"
	"housecare-data/internal/database"
	"housecare-data/internal/engine"
	httpapi "housecare-data/internal/http"
	"housecare-data/internal/logger"
	"housecare-data/internal/mqtt"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"
	"housecare-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "housecare-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	// DB 优先；不可用时退回内存 repo 支持本地联调
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for housecare-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	var (
		housesRepo    repository.HousesRepository
		compsRepo     repository.ComponentsRepository
		recsRepo      repository.RecommendationsRepository
		customersRepo repository.CustomersRepository
		tenantsRepo   repository.TenantsRepository
	)
	if db != nil {
		housesRepo = repository.NewPostgresHousesRepository(db)
		compsRepo = repository.NewPostgresComponentsRepository(db)
		recsRepo = repository.NewPostgresRecommendationsRepository(db)
		customersRepo = repository.NewPostgresCustomersRepository(db)
		tenantsRepo = repository.NewPostgresTenantsRepository(db)
	} else {
		housesRepo = repository.NewMemoryHousesRepository()
		compsRepo = repository.NewMemoryComponentsRepository()
		recsRepo = repository.NewMemoryRecommendationsRepository()
		customersRepo = repository.NewMemoryCustomersRepository()
		tenantsRepo = repository.NewMemoryTenantsRepository()
	}

	health := service.NewHealthService(housesRepo, compsRepo, recsRepo, engine.NewDefault(), kv, log)

	var authClient *service.AuthClient
	if cfg.Auth.Enabled {
		authClient = service.NewAuthClient(cfg.Auth.BaseURL, cfg.Auth.AppID, cfg.Auth.SecretKey, log)
		log.Info("Auth delegation enabled", zap.String("base_url", cfg.Auth.BaseURL))
	} else {
		log.Info("Auth disabled, using X-Tenant-Id passthrough")
	}
	authMiddleware := httpapi.NewAuthMiddleware(authClient, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthz()
	router.RegisterHealthRoutes(authMiddleware, httpapi.NewHealthHandler(health, log))
	router.RegisterAdminRoutes(authMiddleware,
		httpapi.NewHousesHandler(housesRepo, compsRepo, health, log),
		httpapi.NewComponentsHandler(compsRepo, health, log),
		httpapi.NewCustomersHandler(customersRepo),
		httpapi.NewTenantsHandler(tenantsRepo),
	)

	// 定时巡检：时间推移本身会改变评分
	var sweeper *service.SweepScheduler
	if cfg.Sweep.Enabled {
		sweeper = service.NewSweepScheduler(housesRepo, health, cfg.Sweep.Schedule, log)
		if err := sweeper.Start(); err != nil {
			log.Error("Failed to start sweep scheduler", zap.Error(err))
			sweeper = nil
		}
	}

	// 点检上报消费（可选）
	var broker *mqtt.InspectionBroker
	if cfg.MQTT.Enabled {
		broker = mqtt.NewInspectionBroker(&cfg.MQTT, compsRepo, health, log)
		if err := broker.Start(); err != nil {
			log.Error("Failed to start MQTT broker", zap.Error(err))
			broker = nil
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server exited", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if sweeper != nil {
		sweeper.Stop()
	}
	if broker != nil {
		broker.Stop()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
