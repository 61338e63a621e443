package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// ListUsers godoc
// @Summary List users of the organization
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param role query string false "Role"
// @Param department query string false "Department"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} service.ListResult[model.User]
// @Router /api/users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, userSorts...)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), service.UserFilter{
			Status:     c.Query("status"),
			Role:       c.Query("role"),
			Department: c.Query("department"),
		}, p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// ListJoinRequests godoc
// @Summary Self-registered accounts waiting to join the organization
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ListResult[model.User]
// @Router /api/users/join-requests [get]
func ListJoinRequests(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, userSorts...)
		if err != nil {
			return err
		}
		res, err := svc.JoinRequests(c.UserContext(), p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.UpdateUserInput
		if err := bind(c, &in); err != nil {
			return err
		}
		u, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func UpdateUserStatus(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in statusRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		u, err := svc.UpdateStatus(c.UserContext(), id, in.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func AssignUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in roleRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		u, err := svc.AssignRole(c.UserContext(), id, in.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
