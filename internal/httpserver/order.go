package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/service"
)

type OrderHandler struct {
	Svc *service.OrderService
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) Create(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.Svc.CreateOrder(ctx, id)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	page, perPage := pageParams(c)
	ctx := c.Request().Context()
	result, err := h.Svc.ListUserOrders(ctx, id, page, perPage)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetMine(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.Svc.GetUserOrder(ctx, id, orderID)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHandler) AdminList(c echo.Context) error {
	page, perPage := pageParams(c)
	ctx := c.Request().Context()
	result, err := h.Svc.ListAllOrders(ctx, page, perPage)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) AdminGet(c echo.Context) error {
	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.Svc.GetOrderDetails(ctx, orderID)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHandler) AdminUpdateStatus(c echo.Context) error {
	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	order, err := h.Svc.UpdateStatus(ctx, orderID, models.OrderStatus(req.Status))
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}
