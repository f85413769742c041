package http

import (
	"net/http"

	"backtest-engine/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupConfidence(base *echo.Group) {
	base.POST("/confidence", h.scoreConfidence)
}

func (h *HttpAPIHandler) scoreConfidence(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.ConfidenceRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	play := dto.Play{
		Ticker:           req.Ticker,
		Strategy:         req.Setup,
		Direction:        req.Direction,
		SentimentScore:   req.SentimentScore,
		Cost:             req.Cost,
		TheoreticalValue: req.TheoreticalValue,
	}

	score, err := h.service.ConfidenceService.Score(ctx, play, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to score play"})
	}

	return c.JSON(http.StatusOK, score)
}
