package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/repository"
)

// ContactHandler serves the two contact resources, clients and providers.
// Both share the same request shape and validation; only the store behind
// them differs.
type ContactHandler struct {
	Clients   ClientStore
	Providers ProviderStore
}

func NewContactHandler(clients ClientStore, providers ProviderStore) *ContactHandler {
	return &ContactHandler{Clients: clients, Providers: providers}
}

type contactReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r contactReq) validate() error {
	return validation.Errors{
		"name":  validation.Validate(strings.TrimSpace(r.Name), validation.Required, validation.Length(1, 150)),
		"email": validation.Validate(r.Email, is.EmailFormat),
	}.Filter()
}

// ----- clients -----

func (h *ContactHandler) ListClients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Clients.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContactHandler) GetClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ContactHandler) CreateClient(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	item := model.Client{Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Clients.Create(ctx, &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create failed"})
	}
	created, err := h.Clients.GetByID(ctx, item.ID)
	if err != nil {
		created = item
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ContactHandler) UpdateClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item := model.Client{ID: id, Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone}
	if err := h.Clients.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		updated = item
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ContactHandler) DeleteClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Clients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- providers -----

func (h *ContactHandler) ListProviders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Providers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContactHandler) GetProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Providers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ContactHandler) CreateProvider(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	item := model.Provider{Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Providers.Create(ctx, &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create failed"})
	}
	created, err := h.Providers.GetByID(ctx, item.ID)
	if err != nil {
		created = item
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ContactHandler) UpdateProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item := model.Provider{ID: id, Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone}
	if err := h.Providers.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Providers.GetByID(ctx, id)
	if err != nil {
		updated = item
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ContactHandler) DeleteProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Providers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
