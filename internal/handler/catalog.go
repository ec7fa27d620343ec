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

// CatalogHandler serves the two name-only resources, warehouses and
// articles.
type CatalogHandler struct {
	Warehouses WarehouseStore
	Articles   ArticleStore
}

func NewCatalogHandler(warehouses WarehouseStore, articles ArticleStore) *CatalogHandler {
	return &CatalogHandler{Warehouses: warehouses, Articles: articles}
}

type namedReq struct {
	Name string `json:"name"`
}

func (r namedReq) validate() error {
	return validation.Errors{
		"name": validation.Validate(strings.TrimSpace(r.Name), validation.Required, validation.Length(1, 150)),
	}.Filter()
}

// ----- warehouses -----

func (h *CatalogHandler) ListWarehouses(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Warehouses.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetWarehouse(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Warehouses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) CreateWarehouse(c echo.Context) error {
	var req namedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	item := model.Warehouse{Name: strings.TrimSpace(req.Name)}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Warehouses.Create(ctx, &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create failed"})
	}
	created, err := h.Warehouses.GetByID(ctx, item.ID)
	if err != nil {
		created = item
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateWarehouse(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req namedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item := model.Warehouse{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := h.Warehouses.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Warehouses.GetByID(ctx, id)
	if err != nil {
		updated = item
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteWarehouse(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Warehouses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- articles -----

func (h *CatalogHandler) ListArticles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Articles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetArticle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) CreateArticle(c echo.Context) error {
	var req namedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	item := model.Article{Name: strings.TrimSpace(req.Name)}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Articles.Create(ctx, &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create failed"})
	}
	created, err := h.Articles.GetByID(ctx, item.ID)
	if err != nil {
		created = item
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateArticle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req namedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item := model.Article{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := h.Articles.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	updated, err := h.Articles.GetByID(ctx, id)
	if err != nil {
		updated = item
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteArticle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
