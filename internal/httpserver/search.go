package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/service"
	"github.com/nnvstore/backend/internal/util"
)

type SearchHandler struct {
	Svc *service.SearchService
}

func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	page, perPage := pageParams(c)
	offset, limit := util.Calculate(page, perPage)

	ctx := c.Request().Context()
	total, docs, err := h.Svc.Search(ctx, query, offset, limit)
	if err != nil {
		return translate(ctx, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      docs,
		"pagination": util.Paginate(page, limit, total),
	})
}
