package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-classroom-api/api/swagger"
	"github.com/noah-isme/sma-classroom-api/internal/handler"
	"github.com/noah-isme/sma-classroom-api/internal/middleware"
	"github.com/noah-isme/sma-classroom-api/internal/repository"
	"github.com/noah-isme/sma-classroom-api/internal/router"
	"github.com/noah-isme/sma-classroom-api/internal/service"
	"github.com/noah-isme/sma-classroom-api/pkg/cache"
	"github.com/noah-isme/sma-classroom-api/pkg/config"
	"github.com/noah-isme/sma-classroom-api/pkg/database"
	"github.com/noah-isme/sma-classroom-api/pkg/jobs"
	"github.com/noah-isme/sma-classroom-api/pkg/logger"
	"github.com/noah-isme/sma-classroom-api/pkg/storage"
	"github.com/noah-isme/sma-classroom-api/pkg/validation"
)

// @title SMA Classroom API
// @version 1.0.0
// @description School classroom API: catalog, members, assignments, grading, attendance and notifications.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logr.Warn("redis disabled; token revocation and catalog cache are inactive")
	}

	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	revocations := repository.NewRevocationRepository(redisClient)
	subjectRepo := repository.NewSubjectRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	store, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxFileSizeBytes)
	if err != nil {
		logr.Fatal("failed to prepare storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	authService := service.NewAuthService(userRepo, revocations, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	cacheService := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled && redisClient != nil)
	catalogService := service.NewCatalogService(subjectRepo, skillRepo, careerRepo, cacheService, cfg.Catalog.CacheTTL, logr)
	memberService := service.NewMemberService(memberRepo, userRepo, logr)

	notificationService := service.NewNotificationService(notificationRepo, metrics, logr)
	var queue *jobs.Queue
	if cfg.Notifications.Enabled {
		queue = jobs.NewQueue("notifications", notificationService.Handle, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
			OnOutcome:  metrics.RecordJob,
		})
		// workers outlive the signal context; Stop drains them after the server shuts down
		queue.Start(context.Background())
		notificationService.AttachQueue(queue)
	}

	assignmentService := service.NewAssignmentService(service.AssignmentDeps{
		Repo:         assignmentRepo,
		Subjects:     subjectRepo,
		Members:      memberRepo,
		Store:        store,
		Signer:       signer,
		Notifier:     notificationService,
		DownloadBase: cfg.APIPrefix + "/files",
		Logger:       logr,
	})
	gradeService := service.NewGradeService(assignmentRepo, notificationService, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, subjectRepo, logr)

	engine := validation.NewEngine(validation.WithFailFast(cfg.Validation.FailFast))
	strategy := middleware.NewJWTStrategy(authService, cfg.Guard.CookieName)
	guards := router.NewGuards(strategy,
		middleware.WithGuardLogger(logr),
		middleware.WithGuardMetrics(metrics),
		middleware.WithResolveTimeout(cfg.Guard.ResolveTimeout),
	)
	logr.Info("route guards ready",
		zap.String("admin_on_resolve_failure", string(guards.Admin.OnResolveFailure)),
		zap.String("student_on_resolve_failure", string(guards.Student.OnResolveFailure)),
		zap.Duration("resolve_timeout", cfg.Guard.ResolveTimeout),
	)

	r := router.New(router.Deps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		HTTPMetrics:    metrics,
		Validator:      middleware.NewValidator(engine, logr, metrics),
		Guards:         guards,
		Audit:          userRepo,
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authService, handler.CookieConfig{Name: cfg.Guard.CookieName, Secure: cfg.Env == config.EnvProduction}),
			Catalog:      handler.NewCatalogHandler(catalogService),
			Member:       handler.NewMemberHandler(memberService),
			Assignment:   handler.NewAssignmentHandler(assignmentService),
			Grade:        handler.NewGradeHandler(gradeService),
			Attendance:   handler.NewAttendanceHandler(attendanceService),
			Notification: handler.NewNotificationHandler(notificationService),
			File:         handler.NewFileHandler(signer, store, logr),
			Metrics:      handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient)),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if queue != nil {
		queue.Stop()
	}
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}
