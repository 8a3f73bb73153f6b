package http

import (
	"errors"
	"net/http"

	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/internal/repository"
	"zahaam/internal/service"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	log       *logger.Logger
}

func NewHttpAPIHandler(echo *echo.Echo, validator *goValidator.Validate, service *service.Service, log *logger.Logger) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
		log:       log,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	h.SetupJobs(base)
	h.SetupStocks(base)
	h.SetupIndicators(base)
	h.SetupBacktest(base)
}

// respondError maps service errors onto the response envelope.
func (h *HttpAPIHandler) respondError(c echo.Context, err error) error {
	var strategyErr *backtest.InvalidStrategyError
	switch {
	case errors.As(err, &strategyErr):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(strategyErr.Error()))
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	case errors.Is(err, repository.ErrRunNotFound),
		errors.Is(err, repository.ErrJobNotFound),
		errors.Is(err, service.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, repository.ErrLiveDataUnavailable):
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	default:
		h.log.ErrorContext(c.Request().Context(), "Request failed",
			logger.StringField("path", c.Path()),
			logger.ErrorField(err),
		)
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("internal server error"))
	}
}
