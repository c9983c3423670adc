package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-api/api/swagger"
	"github.com/noah-isme/attendance-api/internal/repository"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/cache"
	"github.com/noah-isme/attendance-api/pkg/config"
	"github.com/noah-isme/attendance-api/pkg/database"
	"github.com/noah-isme/attendance-api/pkg/jobs"
	"github.com/noah-isme/attendance-api/pkg/logger"
	"github.com/noah-isme/attendance-api/pkg/storage"
)

// @title Attendance API
// @version 1.0.0
// @description Tracks per-session class attendance and projects safe-skip margins.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	subjectRepo := repository.NewSubjectRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	attendanceRepo := repository.NewAttendanceLogRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	snapshots := service.NewSnapshotService(snapshotRepo, metrics, logr)
	milestones := service.NewMilestoneObserver(cacheSvc, metrics, logr)
	statsSvc := service.NewStatsService(snapshots, cacheSvc, metrics, milestones, service.StatsServiceConfig{CacheTTL: cfg.Stats.CacheTTL}, logr)

	warmup := jobs.NewQueue("stats-warmup", statsSvc.Warm, jobs.QueueConfig{
		Workers:    cfg.Jobs.WorkerConcurrency,
		MaxRetries: cfg.Jobs.WorkerRetries,
		RetryDelay: time.Second,
		Logger:     logr,
	})
	warmup.Start(ctx)
	defer warmup.Stop()
	invalidator := service.NewStatsInvalidator(cacheSvc, warmup, logr)

	validate := validator.New()
	attendanceSvc := service.NewAttendanceService(attendanceRepo, subjectRepo, invalidator, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, invalidator, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, subjectRepo, invalidator, validate, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, semesterRepo, invalidator, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, logr)

	reportCfg := service.ReportServiceConfig{
		Enabled:         cfg.Reports.Enabled,
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: time.Hour,
	}
	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare report storage", zap.String("dir", cfg.Reports.StorageDir), zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(statsSvc, store, signer, validate, logr, reportCfg)
	} else {
		reportSvc = service.NewReportService(statsSvc, nil, nil, validate, logr, reportCfg)
	}
	reportSvc.StartCleanup(ctx)

	router := newRouter(cfg, logr, routerDeps{
		metrics:    metrics,
		db:         db,
		auth:       authSvc,
		stats:      statsSvc,
		attendance: attendanceSvc,
		subjects:   subjectSvc,
		timetable:  timetableSvc,
		calendar:   calendarSvc,
		reports:    reportSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
