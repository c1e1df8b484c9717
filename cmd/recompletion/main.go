package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	netmail "net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/cache"
	"github.com/SAP-F-2025/recompletion-service/internal/config"
	"github.com/SAP-F-2025/recompletion-service/internal/handlers"
	"github.com/SAP-F-2025/recompletion-service/internal/identity"
	"github.com/SAP-F-2025/recompletion-service/internal/mail"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/recompletion-service/internal/restrictions"
	"github.com/SAP-F-2025/recompletion-service/internal/services"
	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/SAP-F-2025/recompletion-service/internal/validator"
	"github.com/SAP-F-2025/recompletion-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Recompletion service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.AutoMigrate(db); err != nil {
		return err
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", "error", err)
		cacheService = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	// ===== REPOSITORIES =====
	settings := postgres.NewSettingsPostgreSQL(db)
	courses := postgres.NewCoursePostgreSQL(db)
	completions := postgres.NewCompletionPostgreSQL(db)
	auditLog := postgres.NewAuditLogPostgreSQL(db)
	capabilities := access.NewChecker(postgres.NewCapabilityPostgreSQL(db))

	var users repositories.UserRepository = postgres.NewUserPostgreSQL(db)
	if cfg.Casdoor.Enabled() {
		users = identity.NewCasdoorDirectory(users, identity.NewCasdoorClient(cfg.Casdoor), logger)
		logger.Info("User contact details served from Casdoor", "endpoint", cfg.Casdoor.Endpoint)
	}

	var mailer mail.Mailer
	switch cfg.Mail.Provider {
	case "sendgrid":
		mailer = mail.NewSendgridMailer(cfg.Mail.SendgridAPIKey, logger)
	default:
		mailer = mail.NewConsoleMailer(logger)
	}

	// ===== SERVICES =====
	registry, err := plugins.NewRegistry(cfg.ActivityPlugins, plugins.Deps{
		DB:      db,
		Access:  capabilities,
		Granter: postgres.NewAssignAttemptPostgreSQL(db),
		Events:  publisher,
		Logger:  logger,
	}, courses)
	if err != nil {
		return err
	}

	resolver := services.NewConfigResolver(settings, registry, logger)
	added, err := resolver.RegisterSiteDefaults(ctx)
	if err != nil {
		return err
	}
	if added > 0 {
		logger.Info("Registered recompletion site defaults", "settings", added)
	}

	engine := services.NewResetEngine(services.EngineDeps{
		Courses:     courses,
		Completions: completions,
		Grades:      postgres.NewGradePostgreSQL(db),
		AuditLog:    auditLog,
		Resolver:    resolver,
		Registry:    registry,
		Restriction: restrictions.NewEnrolMethodRestriction(postgres.NewEnrolmentPostgreSQL(db)),
		Notification: services.NewNotificationService(mailer, users, services.NotificationConfig{
			SiteURL: cfg.SiteURL,
			From:    netmail.Address{Name: cfg.Mail.FromName, Address: cfg.Mail.FromAddress},
		}, logger),
		Events: publisher,
		Cache:  cacheService,
		Logger: logger,
	})
	sweep := services.NewSweepScheduler(settings, courses, completions, resolver, engine, logger)

	// ===== SCHEDULER =====
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() { sweep.Run(ctx) }); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()
	logger.Info("Recompletion sweep scheduled", "schedule", cfg.SweepSchedule)

	// ===== UNENROLMENT EVENTS =====
	if cfg.Events.UsesKafka() {
		subscriber, err := cfg.Events.CreateUnenrolSubscriber(logger)
		if err != nil {
			return err
		}
		defer subscriber.Close()

		unenrol := services.NewUnenrolHandler(engine, resolver, logger)
		go func() {
			if err := subscriber.Run(ctx, unenrol.Handle); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Unenrolment subscriber stopped", "error", err)
			}
		}()
	}

	// ===== HTTP =====
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	manager := handlers.NewHandlerManager(handlers.RecompletionDeps{
		Courses:  courses,
		Users:    users,
		AuditLog: auditLog,
		Resolver: resolver,
		Engine:   engine,
		Sweep:    sweep,
		Reports:  services.NewReportService(completions, users, auditLog, logger),
		Access:   capabilities,
	}, validator.New(), utils.NewSlogLogger(logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           manager.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
