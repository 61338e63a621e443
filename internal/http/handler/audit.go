package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// ListAuditEvents godoc
// @Summary Audit log of the organization
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param actor_id query string false "Actor"
// @Param resource_type query string false "Resource type"
// @Param resource_id query string false "Resource"
// @Success 200 {object} service.ListResult[audit.Event]
// @Router /api/audit [get]
func ListAuditEvents(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), service.AuditFilter{
			ActorID:      c.Query("actor_id"),
			ResourceType: c.Query("resource_type"),
			ResourceID:   c.Query("resource_id"),
		}, p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
