package middleware

import (
	"errors"
	"net/url"

	"coursemaster/store"

	"github.com/gofiber/fiber/v2"
)

// PathParam returns the URL-decoded route parameter.
func PathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// RequireSelf allows the request only when the :param path segment equals the
// authenticated email.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}
		if identity.Email != PathParam(c, param) {
			return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden", nil)
		}
		return c.Next()
	}
}

// RequireAdmin checks the caller's role against the stored user record rather
// than the token claims.
func RequireAdmin(users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}

		user, err := users.FindUserByEmail(c.UserContext(), identity.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden: Admins only", nil)
			}
			// Other DB error
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}
		if !user.IsAdmin() {
			return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden: Admins only", nil)
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin is RequireSelf for read-only lookups, additionally
// letting stored admins through.
func RequireSelfOrAdmin(param string, users store.UserStore) fiber.Handler {
	admin := RequireAdmin(users)
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}
		if identity.Email == PathParam(c, param) {
			return c.Next()
		}
		return admin(c)
	}
}
