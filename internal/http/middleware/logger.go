package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Logger logs one structured line per request with request_id, method, path, status and
// latency in milliseconds. Authenticated requests also carry user_id.
func Logger(logger *zap.SugaredLogger) fiber.Handler {
	logger = logger.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the global error handler has not written the response yet
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []any{
			"request_id", GetRequestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid := UserID(c); uid != "" {
			fields = append(fields, "user_id", uid)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Errorw("request", append(fields, "error", err)...)
		} else {
			logger.Infow("request", fields...)
		}

		return err
	}
}
