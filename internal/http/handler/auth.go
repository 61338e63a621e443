package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register godoc
// @Summary Register a user
// @Description New accounts start in pending status.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "Account"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := bind(c, &in); err != nil {
			return err
		}
		u, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "Credentials"
// @Success 200 {object} service.Session
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := bind(c, &in); err != nil {
			return err
		}
		s, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	}
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} service.Session
// @Failure 401 {object} errorPayload
// @Router /api/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in refreshRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		if in.RefreshToken == "" {
			return badRequest("VALIDATION_ERROR", "refresh_token is required")
		}
		s, err := svc.Refresh(c.UserContext(), in.RefreshToken)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	}
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Router /api/auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param body body service.ChangePasswordInput true "Passwords"
// @Success 204
// @Failure 401 {object} errorPayload
// @Router /api/auth/password [put]
func ChangePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChangePasswordInput
		if err := bind(c, &in); err != nil {
			return err
		}
		if err := svc.ChangePassword(c.UserContext(), in); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
