package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/service"
)

type CartHandler struct {
	Svc *service.CartService
}

type cartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type cartSyncRequest struct {
	Items []repo.SyncItem `json:"items"`
}

func cartResponse(items []repo.CartView) echo.Map {
	var total float64
	var count uint
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	return echo.Map{
		"items":       items,
		"total":       total,
		"items_count": count,
	}
}

func (h *CartHandler) Get(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, err := h.Svc.GetCart(ctx, id)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) Add(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	items, err := h.Svc.AddItem(ctx, id, req.ProductID, req.Quantity)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) Update(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	productID, err := uintParam(c, "productId")
	if err != nil {
		return err
	}
	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	items, err := h.Svc.UpdateItem(ctx, id, productID, req.Quantity)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) Remove(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	productID, err := uintParam(c, "productId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, err := h.Svc.RemoveItem(ctx, id, productID)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) Clear(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Svc.ClearCart(ctx, id); err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(nil))
}

func (h *CartHandler) Sync(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req cartSyncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	items, err := h.Svc.SyncCart(ctx, id, req.Items)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, cartResponse(items))
}
