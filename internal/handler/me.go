package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/config"
	"github.com/jortega/backoffice-api/internal/middleware"
	"github.com/jortega/backoffice-api/internal/utils"
)

// MeHandler serves the authenticated account's own profile: read, name
// edits and password change. Nothing here can touch another account.
type MeHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewMeHandler(cfg config.Config, users UserStore) *MeHandler {
	return &MeHandler{Cfg: cfg, Users: users}
}

type profileReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPassword2    string `json:"new_password2"`
}

// Me handles GET /api/accounts/me/.
func (h *MeHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe handles PATCH and PUT /api/accounts/me/. Only the name fields
// are mutable through this path; absent fields keep their current value.
func (h *MeHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	first, last := u.FirstName, u.LastName
	if req.FirstName != nil {
		first = *req.FirstName
	}
	if req.LastName != nil {
		last = *req.LastName
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.UpdateProfile(ctx, u.ID, first, last); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "load failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ChangePassword handles POST /api/accounts/me/change-password/. The
// current password is re-verified before anything changes.
func (h *MeHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"current_password": "La contraseña actual no es válida."})
	}
	if req.NewPassword != req.NewPassword2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password2": "Las contraseñas no coinciden."})
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password": err.Error()})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "hash failed"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Contraseña cambiada."})
}
