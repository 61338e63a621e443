package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/service"
)

// roleID accepts a custom role UUID or a system role name.
func roleID(c *fiber.Ctx) (string, error) {
	if id := c.Params("id"); auth.IsSystemRole(id) {
		return id, nil
	}
	return pathID(c, "id")
}

func ListRoles(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": roles})
	}
}

func ListPermissions(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": svc.AvailablePermissions()})
	}
}

// CreateRole godoc
// @Summary Create a custom role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RoleInput true "Role"
// @Success 201 {object} model.CustomRole
// @Failure 400 {object} errorPayload "Reserved name or unknown permission"
// @Failure 409 {object} errorPayload
// @Router /api/roles [post]
func CreateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RoleInput
		if err := bind(c, &in); err != nil {
			return err
		}
		r, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func GetRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := roleID(c)
		if err != nil {
			return err
		}
		r, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(r)
	}
}

func UpdateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := roleID(c)
		if err != nil {
			return err
		}
		var in service.UpdateRoleInput
		if err := bind(c, &in); err != nil {
			return err
		}
		r, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(r)
	}
}

func DeleteRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := roleID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
