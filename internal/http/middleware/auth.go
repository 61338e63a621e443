package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/auth"
)

// Authenticate requires a valid access token in the Authorization header and
// stores the actor in the request's user context. Organization and role come
// from the user record, not the token claims.
func Authenticate(tokens *auth.TokenManager, users auth.ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimSpace(tok), auth.TokenAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		a, err := users.CurrentActor(c.UserContext(), claims.UserID)
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		case errors.Is(err, auth.ErrInactiveAccount):
			return fiber.NewError(fiber.StatusForbidden, "account is disabled")
		case err != nil:
			return err
		}
		c.SetUserContext(auth.WithActor(c.UserContext(), a))
		return c.Next()
	}
}

// RequirePermission lets the request through when the actor's role grants
// every listed permission in its organization.
func RequirePermission(resolver auth.PermissionResolver, perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, ok := auth.ActorFrom(c.UserContext())
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if a.OrgID == "" {
			return fiber.NewError(fiber.StatusForbidden, "join or create an organization first")
		}
		granted, err := resolver.Permissions(c.UserContext(), a.Role, a.OrgID)
		if err != nil {
			return err
		}
		for _, p := range perms {
			if !auth.HasPermission(granted, p) {
				return fiber.NewError(fiber.StatusForbidden, "missing permission "+p)
			}
		}
		return c.Next()
	}
}

// SelfOrPermission allows the request when the route parameter param names the
// actor, and otherwise falls back to RequirePermission.
func SelfOrPermission(resolver auth.PermissionResolver, param string, perm string) fiber.Handler {
	fallback := RequirePermission(resolver, perm)
	return func(c *fiber.Ctx) error {
		a, ok := auth.ActorFrom(c.UserContext())
		if ok && c.Params(param) == a.UserID {
			return c.Next()
		}
		return fallback(c)
	}
}
