package http

import (
	"net/http"

	"zahaam/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStocks(base *echo.Group) {
	stocks := base.Group("/stocks")
	stocks.GET("/:symbol/bars", h.getBars)
}

func (h *HttpAPIHandler) getBars(c echo.Context) error {
	param := dto.GetStockDataParam{}
	if err := c.Bind(&param); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid query parameters"))
	}
	seed, err := querySeed(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	param.Seed = seed

	data, err := h.service.StockService.GetBars(c.Request().Context(), param)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", data))
}
