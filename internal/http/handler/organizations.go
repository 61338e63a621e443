package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// CreateOrganization godoc
// @Summary Create an organization
// @Description The caller becomes its owner and admin. Refresh the token pair afterwards to pick up the new organization.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateOrganizationInput true "Organization"
// @Success 201 {object} model.Organization
// @Failure 409 {object} errorPayload
// @Router /api/organizations [post]
func CreateOrganization(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateOrganizationInput
		if err := bind(c, &in); err != nil {
			return err
		}
		org, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(org)
	}
}

func CurrentOrganization(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.Current(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(org)
	}
}

func GetOrganization(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		org, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(org)
	}
}

func UpdateOrganization(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateOrganizationInput
		if err := bind(c, &in); err != nil {
			return err
		}
		org, err := svc.Update(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(org)
	}
}

// DeleteOrganization godoc
// @Summary Delete the current organization
// @Description Owner only. Removes every project, task, team, comment, file record, custom role and integration; members are detached.
// @Tags organizations
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} errorPayload
// @Router /api/organizations/current [delete]
func DeleteOrganization(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext()); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListMembers(svc service.OrganizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, userSorts...)
		if err != nil {
			return err
		}
		res, err := svc.Members(c.UserContext(), p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
