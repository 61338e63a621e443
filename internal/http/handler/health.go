package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/storage"
)

// Pinger is satisfied by *database.Mongo.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck godoc
// @Summary Readiness check
// @Description Pings MongoDB. Object storage (optional) is reported but does not fail the check.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db Pinger, st storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		res := fiber.Map{"status": "healthy", "database": "ok"}
		if st != nil {
			if _, err := st.Check(ctx); err != nil {
				res["storage"] = "unavailable"
			} else {
				res["storage"] = "ok"
			}
		}
		return c.JSON(res)
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
