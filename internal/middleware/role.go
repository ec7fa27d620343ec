package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/model"
)

// Authorization is expressed as composable predicates over the caller's
// account (and, for object-level checks, the targeted row). A request that
// reaches a predicate is already authenticated; denial here is always 403.

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the given roles. It assumes JWTAuth ran earlier in the
// chain and stored the account in context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentAccount(c)
			if !ok || !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"detail": "No tiene permiso para realizar esta acción.",
				})
			}
			return next(c)
		}
	}
}

// SelfOrAdmin is the object-level predicate: the caller may act on target
// when the target is their own account or when they are an admin. It is
// evaluated after the target row has been loaded, so a caller is only
// rejected once the row is known to exist.
func SelfOrAdmin(caller model.User, target model.User) bool {
	return caller.ID == target.ID || caller.IsAdmin()
}
