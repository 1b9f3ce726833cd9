package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/service"
)

type CatalogHandler struct {
	Svc *service.CatalogService
}

func filtersFromQuery(c echo.Context) repo.ProductFilters {
	return repo.ProductFilters{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Model:    c.QueryParam("model"),
		Color:    c.QueryParam("color"),
		Memory:   c.QueryParam("memory"),
	}
}

func (h *CatalogHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)
	ctx := c.Request().Context()
	result, err := h.Svc.List(ctx, page, perPage, filtersFromQuery(c))
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *CatalogHandler) FilterOptions(c echo.Context) error {
	ctx := c.Request().Context()
	options, err := h.Svc.FilterOptions(ctx, filtersFromQuery(c))
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"filters": options})
}

func (h *CatalogHandler) AdminCreate(c echo.Context) error {
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	product, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": product})
}

func (h *CatalogHandler) AdminUpdate(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	product, err := h.Svc.UpdateProduct(ctx, id, in)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

func (h *CatalogHandler) AdminDelete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
