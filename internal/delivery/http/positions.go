package http

import (
	"fmt"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPositions(base *echo.Group) {
	v1 := base.Group("/v1/positions")
	{
		v1.GET("", h.listPositions)
		v1.POST("", h.openPosition)
		v1.PUT("", h.replaceAccountPositions)
		v1.POST("/refresh", h.refreshPrices)
		v1.GET("/:id", h.getPosition)
		v1.DELETE("/:id", h.deletePosition)
		v1.POST("/:id/trades", h.executeTrade)
	}
}

func (h *HttpAPIHandler) listPositions(c echo.Context) error {
	includeCleared, err := optionalBoolParam(c, "include_cleared")
	if err != nil {
		return h.respondBadRequest(c, err)
	}

	positions, err := h.service.LedgerService.ListPositions(c.Request().Context(), c.QueryParam("account_id"))
	if err != nil {
		return h.respondError(c, err)
	}

	if includeCleared != nil && !*includeCleared {
		open := make([]model.Position, 0, len(positions))
		for _, p := range positions {
			if !p.IsCleared() {
				open = append(open, p)
			}
		}
		positions = open
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Positions retrieved", positions))
}

func (h *HttpAPIHandler) getPosition(c echo.Context) error {
	position, err := h.service.LedgerService.GetPosition(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Position retrieved", position))
}

func (h *HttpAPIHandler) openPosition(c echo.Context) error {
	req := new(dto.OpenPositionRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}

	position, err := h.service.LedgerService.OpenPosition(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Position opened", position))
}

func (h *HttpAPIHandler) executeTrade(c echo.Context) error {
	req := new(dto.TradeRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}
	req.PositionID = c.Param("id")

	position, err := h.service.LedgerService.ExecuteTrade(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Trade executed", position))
}

func (h *HttpAPIHandler) deletePosition(c echo.Context) error {
	if err := h.service.LedgerService.DeletePosition(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Position deleted", nil))
}

func (h *HttpAPIHandler) refreshPrices(c echo.Context) error {
	result, err := h.service.LedgerService.RefreshPrices(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Prices refreshed", result))
}

// replaceAccountPositions takes the complete position list of one account.
// account_id in the query wins over the body; without either the default
// account is used.
func (h *HttpAPIHandler) replaceAccountPositions(c echo.Context) error {
	req := new(dto.ReplacePositionsRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}
	if accountID := c.QueryParam("account_id"); accountID != "" {
		req.AccountID = accountID
	}

	positions, err := h.service.LedgerService.ReplaceAccountPositions(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Positions saved", positions))
}

func optionalBoolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", name)
	}
	return &value, nil
}
