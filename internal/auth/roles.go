package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/domain"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles. Admins always pass.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		caller, err := CallerFromContext(c)
		if err != nil {
			return err
		}
		if caller.IsAdmin() || len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[caller.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := CallerFromContext(c); err != nil {
			return err
		}
		return c.Next()
	}
}
