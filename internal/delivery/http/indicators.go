package http

import (
	"fmt"
	"net/http"
	"strconv"

	"zahaam/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupIndicators(base *echo.Group) {
	base.GET("/indicators/:symbol", h.getIndicators)
}

func (h *HttpAPIHandler) getIndicators(c echo.Context) error {
	param := dto.GetIndicatorsParam{}
	if err := c.Bind(&param); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid query parameters"))
	}
	seed, err := querySeed(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	param.Seed = seed

	resp, err := h.service.IndicatorService.GetIndicators(c.Request().Context(), param)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", resp))
}

// querySeed reads the optional synthetic seed; absent means nil.
func querySeed(c echo.Context) (*int64, error) {
	raw := c.QueryParam("seed")
	if raw == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("seed must be an integer")
	}
	return &seed, nil
}
