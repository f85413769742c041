package http

import (
	"net/http"

	"backtest-engine/internal/dto"
	"backtest-engine/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/backtest")
	backtestGroup.GET("/replay", h.runReplay)
	backtestGroup.POST("/validate", h.runValidate)
}

func (h *HttpAPIHandler) runReplay(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.BacktestService.Replay(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to run replay"})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) runValidate(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.ValidateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.BacktestService.Validate(ctx, service.RunOptions{Trials: req.Trials})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to run validation"})
	}

	return c.JSON(http.StatusOK, result)
}
