package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docvault/docs"
	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	handlers "docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/listing"
	"docvault/internal/metrics"
	"docvault/internal/repository"
	"docvault/internal/repository/memory"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

// multipartOverhead leaves room for form fields and boundaries around the largest file.
const multipartOverhead = 1 << 20

// application is the fully wired server.
type application struct {
	http    *fiber.App
	closers []io.Closer
	logger  *zap.SugaredLogger
}

// metadataStore bundles the repositories of one backend with its health probe.
type metadataStore struct {
	pinger    handlers.Pinger
	documents repository.DocumentRepository
	users     repository.UserRepository
	closer    io.Closer
}

func openMetadataStore(ctx context.Context, cfg *config.AppConfig, logger *zap.SugaredLogger) (*metadataStore, error) {
	switch cfg.Database.Driver {
	case config.DatabaseDriverMemory:
		db, err := memory.New()
		if err != nil {
			return nil, err
		}
		logger.Warnw("using in-memory metadata store, data is lost on exit", "event", "db_driver", "driver", cfg.Database.Driver)
		return &metadataStore{
			pinger:    db,
			documents: memory.NewDocumentRepository(db),
			users:     memory.NewUserRepository(db),
			closer:    db,
		}, nil

	case config.DatabaseDriverPostgres:
		db, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &metadataStore{
			pinger:    db,
			documents: postgres.NewDocumentPostgres(db),
			users:     postgres.NewUserPostgres(db),
			closer:    db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openStorage(ctx context.Context, cfg *config.AppConfig, logger *zap.SugaredLogger) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFilesystem:
		return storage.NewFilesystem(cfg.Storage.BasePath, logger)
	case config.StorageDriverMinIO:
		return storage.NewMinIO(ctx, cfg.MinIO)
	case config.StorageDriverGCS:
		return storage.NewGCS(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newApplication(ctx context.Context, cfg *config.AppConfig, logger *zap.SugaredLogger, reg *prometheus.Registry) (*application, error) {
	a := &application{logger: logger}

	store, err := openMetadataStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.closer)

	objStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	if c, ok := objStore.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	maxUpload, err := cfg.Storage.MaxUploadSizeBytes()
	if err != nil {
		a.close()
		return nil, err
	}

	m, err := metrics.New(reg)
	if err != nil {
		a.close()
		return nil, err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		a.close()
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Std())
	authSvc := service.NewAuthService(store.users, tokens,
		service.WithAuthLogger(logger),
		service.WithAuthMetrics(m),
		service.WithIdentityCache(cfg.Cache.IdentityTTL.Std(), cfg.Cache.CleanupInterval.Std()),
	)
	docSvc := service.NewDocumentService(objStore, store.documents,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithMaxUploadSize(maxUpload),
		service.WithIdentities(authSvc),
		service.WithListingConfig(listing.Config{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		}),
	)

	app := fiber.New(fiber.Config{
		AppName:      "docvault",
		ErrorHandler: handlers.ErrorHandler(logger),
		BodyLimit:    int(maxUpload) + multipartOverhead,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowCredentials: cfg.ClientURL != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
	}))
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Documents: docSvc,
		Auth:      authSvc,
		Tokens:    tokens,
		DB:        store.pinger,
		Metrics:   m,
		Logger:    logger,
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

	a.http = app
	return a, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warnw("close failed", "error", err)
		}
	}
	a.closers = nil
}
