package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/http/middleware"
	"docvault/internal/metrics"
	"docvault/internal/service"
)

// Pinger reports whether the metadata store is reachable. *sql.DB and the in-memory store
// both satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Documents service.DocumentService
	Auth      service.AuthService
	Tokens    middleware.TokenVerifier
	DB        Pinger
	Metrics   *metrics.Metrics
	Logger    *zap.SugaredLogger
}

// Handler serves the document and identity endpoints.
type Handler struct {
	documents service.DocumentService
	auth      service.AuthService
	db        Pinger
	logger    *zap.SugaredLogger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Every route is served at the
// root and again under /api.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &Handler{
		documents: deps.Documents,
		auth:      deps.Auth,
		db:        deps.DB,
		logger:    logger.Named("handler"),
	}
	authn := middleware.Authenticate(deps.Tokens, deps.Metrics)

	// liveness only
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, r := range []fiber.Router{app, app.Group("/api")} {
		r.Get("/health", h.health)

		a := r.Group("/auth")
		a.Post("/register", h.register)
		a.Post("/login", h.login)
		a.Get("/me", authn, h.me)

		d := r.Group("/documents", authn)
		d.Post("/upload", h.uploadDocument)
		d.Get("/", h.listDocuments)
		d.Get("/:id", h.getDocument)
		d.Get("/:id/download", h.downloadDocument)
		d.Put("/:id", h.updateDocument)
		d.Post("/:id/permissions", h.setPermission)
		d.Delete("/:id", h.deleteDocument)
	}
}

// health godoc
// @Summary Readiness: checks metadata store connectivity
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func (h *Handler) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
}
