package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"portfolioapi/docs"
	"portfolioapi/internal/ai"
	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/config"
	"portfolioapi/internal/database"
	"portfolioapi/internal/database/migration"
	handlers "portfolioapi/internal/http/handler"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/integration"
	"portfolioapi/internal/logging"
	"portfolioapi/internal/otel"
	"portfolioapi/internal/repository/mongodb"
	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
)

// @title Portfolio Management API
// @version 1.0
// @description Projects, tasks, teams and resource analytics for an organization.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log, err := logging.New(cfg.LogLevel, cfg.Location())
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	mongoDB, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migration.EnsureIndexes(ctx, migration.DatabaseIndexes{DB: mongoDB.DB}, log); err != nil {
		log.Fatal("failed to ensure indexes", zap.Error(err))
	}

	// The audit trail lives in PostgreSQL when DB_HOST is set.
	var recorder audit.Recorder = audit.Noop{}
	auditDB, err := database.NewPostgres(ctx, cfg.Database)
	switch {
	case errors.Is(err, database.ErrAuditDisabled):
		log.Info("audit_disabled")
	case err != nil:
		log.Fatal("failed to connect to audit database", zap.Error(err))
	default:
		defer auditDB.Close()
		if err := audit.Migrate(ctx, auditDB); err != nil {
			log.Fatal("failed to migrate audit database", zap.Error(err))
		}
		recorder = audit.NewPostgres(auditDB)
	}

	// Uploads are rejected with 503 when object storage is not configured.
	objStore := storage.Disabled()
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
	}

	stores := mongodb.NewStores(mongoDB.DB)
	repos := service.Repositories{
		Users:         stores.Users,
		Organizations: stores.Organizations,
		Projects:      stores.Projects,
		Tasks:         stores.Tasks,
		Teams:         stores.Teams,
		Comments:      stores.Comments,
		Files:         stores.Files,
		Notifications: stores.Notifications,
		Roles:         stores.Roles,
		Integrations:  stores.Integrations,
	}

	tokens := auth.NewTokenManager(cfg.Auth)
	notifications := service.NewNotificationService(repos.Notifications, log)
	roles := service.NewRoleService(repos, recorder, log)
	integrations := integration.NewManager(integration.DefaultCatalog(), repos.Integrations, objStore, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// Register global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:            mongoDB,
		Storage:       objStore,
		Tokens:        tokens,
		Metrics:       registry,
		Auth:          service.NewAuthService(repos, tokens, recorder, log),
		Users:         service.NewUserService(repos, recorder, log),
		Organizations: service.NewOrganizationService(repos, recorder, log),
		Projects:      service.NewProjectService(repos, notifications, recorder, log),
		Tasks:         service.NewTaskService(repos, notifications, recorder, log),
		Teams:         service.NewTeamService(repos, recorder, log),
		Comments:      service.NewCommentService(repos, notifications, recorder, log),
		Files:         service.NewFileService(objStore, repos, recorder, log),
		Notifications: notifications,
		Roles:         roles,
		Analytics:     service.NewAnalyticsService(repos, ai.FromConfig(cfg.AI, log), log),
		Integrations:  service.NewIntegrationService(integrations, recorder, log),
		Audit:         service.NewAuditService(recorder),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error("server_stopped", zap.Error(err))
			stop()
		}
	}()
	log.Info("server_started", zap.String("addr", addr))

	<-ctx.Done()
	log.Info("shutdown_start")

	timeout := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		log.Error("http_shutdown_failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("db_close_failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
	log.Info("shutdown_complete")
}
