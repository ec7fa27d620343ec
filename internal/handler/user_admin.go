package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/middleware"
	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/queue"
	"github.com/jortega/backoffice-api/internal/repository"
)

// UserAdminHandler manages accounts under /api/accounts/users/. Listing,
// deleting and the set-role/set-active actions are admin-only (enforced at
// the route level). Detail reads and edits apply the self-or-admin
// predicate per object: an account may always view and edit its own row,
// but only an admin can touch someone else's, and only an admin can change
// fields beyond the profile names.
type UserAdminHandler struct {
	Users UserStore
	Audit AuditPublisher
}

func NewUserAdminHandler(users UserStore, audit AuditPublisher) *UserAdminHandler {
	return &UserAdminHandler{Users: users, Audit: audit}
}

type adminUpdateReq struct {
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
	CompanyID *uint64 `json:"company_id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// List handles GET /api/accounts/users/ (admin only), newest first.
func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/accounts/users/:id/ with the self-or-admin check.
func (h *UserAdminHandler) Get(c echo.Context) error {
	caller, target, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !middleware.SelfOrAdmin(caller, target) {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, target)
}

// Update handles PATCH and PUT /api/accounts/users/:id/. Admins may edit
// every mutable field; a non-admin editing their own row is restricted to
// the profile names, exactly like /me/.
func (h *UserAdminHandler) Update(c echo.Context) error {
	caller, target, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !middleware.SelfOrAdmin(caller, target) {
		return forbidden(c)
	}
	var req adminUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if !caller.IsAdmin() {
		first, last := target.FirstName, target.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		if err := h.Users.UpdateProfile(ctx, target.ID, first, last); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
		}
		updated, _ := h.Users.GetByID(ctx, target.ID)
		return c.JSON(http.StatusOK, updated)
	}

	if req.Email != nil {
		target.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"role": "Valor inválido."})
		}
		target.Role = *req.Role
	}
	if req.IsActive != nil {
		target.IsActive = *req.IsActive
	}
	if req.CompanyID != nil {
		target.CompanyID = *req.CompanyID
	}
	if req.FirstName != nil {
		target.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		target.LastName = *req.LastName
	}
	if err := h.Users.UpdateAdmin(ctx, target); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "Email ya registrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, _ := h.Users.GetByID(ctx, target.ID)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/accounts/users/:id/ (admin only, hard delete).
func (h *UserAdminHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SetRole handles POST /api/accounts/users/:id/set-role/ (admin only). The
// single input field is validated before anything is written.
func (h *UserAdminHandler) SetRole(c echo.Context) error {
	_, target, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"role": "Valor inválido."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.SetRole(ctx, target.ID, req.Role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	h.audit(c, queue.AccountEvent{
		Type:       queue.EventRoleChanged,
		UserID:     target.ID,
		Email:      target.Email,
		Role:       req.Role,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	updated, _ := h.Users.GetByID(ctx, target.ID)
	return c.JSON(http.StatusOK, updated)
}

// SetActive handles POST /api/accounts/users/:id/set-active/ (admin only).
// The flag is accepted as a JSON bool or as a case-insensitive
// "true"/"false" string; anything else is rejected.
func (h *UserAdminHandler) SetActive(c echo.Context) error {
	_, target, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	var req struct {
		IsActive any `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	val := strings.ToLower(fmt.Sprint(req.IsActive))
	if val != "true" && val != "false" {
		return c.JSON(http.StatusBadRequest, echo.Map{"is_active": "Usa true/false."})
	}
	active := val == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.SetActive(ctx, target.ID, active); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	h.audit(c, queue.AccountEvent{
		Type:       queue.EventActiveChanged,
		UserID:     target.ID,
		Email:      target.Email,
		IsActive:   &active,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	updated, _ := h.Users.GetByID(ctx, target.ID)
	return c.JSON(http.StatusOK, updated)
}

// loadTarget resolves the :id route param into a stored account. The
// object is loaded before any object-level permission decision so callers
// are only rejected once the row is known. On failure the response has
// already been written and ok is false.
func (h *UserAdminHandler) loadTarget(c echo.Context) (caller model.User, target model.User, ok bool) {
	caller, authed := middleware.CurrentAccount(c)
	if !authed {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
		return caller, target, false
	}
	id, err := parseID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
		return caller, target, false
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	target, err = h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = notFound(c)
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
		}
		return caller, target, false
	}
	return caller, target, true
}

func (h *UserAdminHandler) audit(c echo.Context, ev queue.AccountEvent) {
	if h.Audit == nil {
		return
	}
	if caller, ok := middleware.CurrentAccount(c); ok {
		ev.ActorID = caller.ID
	}
	if err := h.Audit(c.Request().Context(), ev); err != nil {
		log.Printf("audit: publish %s for user %d: %v", ev.Type, ev.UserID, err)
	}
}

func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"detail": "No tiene permiso para realizar esta acción."})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"detail": "No encontrado."})
}
