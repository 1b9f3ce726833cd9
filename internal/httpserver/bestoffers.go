package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/service"
)

type BestOfferHandler struct {
	Svc *service.BestOfferService
}

type bestOffersRequest struct {
	ProductIDs []*uint `json:"product_ids"`
}

func (h *BestOfferHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	offers, err := h.Svc.Get(ctx)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": offers})
}

func (h *BestOfferHandler) AdminUpdate(c echo.Context) error {
	var req bestOffersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	offers, err := h.Svc.Update(ctx, req.ProductIDs)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "offers": offers})
}
