package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/opsdesk-service/internal/domain"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles. With no
// arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewPermissionDenied("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff rejects client accounts.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.IsClient() {
			return apperrors.NewPermissionDenied("staff role required")
		}
		return c.Next()
	}
}

// RequireExecutive restricts a route to executive roles.
func RequireExecutive() fiber.Handler {
	return RequireRole(domain.RoleCRO, domain.RoleCOO, domain.RoleCEO)
}
