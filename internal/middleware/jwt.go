package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/repository"
	"github.com/jortega/backoffice-api/internal/utils"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxAccount = "account" // model.User of the authenticated caller
	CtxUserID  = "user_id" // uint64 subject claim
	CtxRole    = "role"    // role claim snapshot from the token
)

// AccountLoader resolves a token subject to a stored account. Satisfied by
// *repository.UserRepo.
type AccountLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and resolves its subject against the account store. A token whose
// signature and expiry check out but whose subject no longer exists is
// still rejected: authentication requires a live account. The loaded
// account is stashed in the context so handlers do not hit the store again.
func JWTAuth(secret string, accounts AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code": "token_invalid", "detail": "Falta el token de autenticación.",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				code := "token_invalid"
				if errors.Is(err, utils.ErrTokenExpired) {
					code = "token_expired"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code": code, "detail": "El token no es válido o ha expirado.",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := accounts.GetByID(ctx, claims.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code": "token_invalid", "detail": "El token no es válido o ha expirado.",
				})
			}
			if err != nil {
				// A store failure is not an authentication verdict.
				return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code": "user_inactive", "detail": "Esta cuenta está desactivada",
				})
			}

			c.Set(CtxAccount, u)
			c.Set(CtxUserID, u.ID)
			c.Set(CtxRole, u.Role)
			return next(c)
		}
	}
}

// CurrentAccount returns the account loaded by JWTAuth. The second return
// is false when the request did not pass through the middleware.
func CurrentAccount(c echo.Context) (model.User, bool) {
	u, ok := c.Get(CtxAccount).(model.User)
	return u, ok
}
