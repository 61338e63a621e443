package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/integration"
	"portfolioapi/internal/service"
)

type setupRequest struct {
	Config map[string]string `json:"config"`
}

func IntegrationCatalog(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": svc.Catalog()})
	}
}

func ListIntegrations(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": res})
	}
}

// SetupIntegration godoc
// @Summary Connect a provider
// @Description Settings depend on the provider; see the catalog.
// @Tags integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param provider path string true "Provider ID"
// @Param body body setupRequest true "Settings"
// @Success 200 {object} integration.Status
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload "Unknown provider"
// @Router /api/integrations/{provider} [put]
func SetupIntegration(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in setupRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		st, err := svc.Setup(c.UserContext(), c.Params("provider"), in.Config)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	}
}

func TestIntegration(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Test(c.UserContext(), c.Params("provider"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func NotifyIntegration(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var msg integration.Message
		if err := bind(c, &msg); err != nil {
			return err
		}
		res, err := svc.Notify(c.UserContext(), c.Params("provider"), msg)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func SyncIntegration(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Sync(c.UserContext(), c.Params("provider"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func DisconnectIntegration(svc service.IntegrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Disconnect(c.UserContext(), c.Params("provider")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
