package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/repository"
)

// CompanyHandler serves tenant CRUD under /api/companies/. Every write that
// promotes a primary goes through the repository transaction, so the
// "exactly one primary" invariant holds no matter how the request is shaped.
type CompanyHandler struct {
	Companies CompanyStore
}

func NewCompanyHandler(companies CompanyStore) *CompanyHandler {
	return &CompanyHandler{Companies: companies}
}

type companyReq struct {
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
}

func (r companyReq) validate() error {
	return validation.Errors{
		"name": validation.Validate(strings.TrimSpace(r.Name), validation.Required, validation.Length(1, 150)),
	}.Filter()
}

// List handles GET /api/companies/.
func (h *CompanyHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Companies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/companies/:id/.
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

// GetPrimary handles GET /api/companies/primary/.
func (h *CompanyHandler) GetPrimary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Companies.GetPrimary(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/companies/.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	item := model.Company{Name: strings.TrimSpace(req.Name), IsPrimary: req.IsPrimary}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Companies.Create(ctx, &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create failed"})
	}
	created, err := h.Companies.GetByID(ctx, item.ID)
	if err != nil {
		created = item
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PATCH and PUT /api/companies/:id/.
func (h *CompanyHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item := model.Company{ID: id, Name: strings.TrimSpace(req.Name), IsPrimary: req.IsPrimary}
	if err := h.Companies.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		updated = item
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/companies/:id/. Deletion is blocked while
// accounts still reference the company.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Companies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		if errors.Is(err, repository.ErrCompanyInUse) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "La empresa tiene usuarios asignados."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
