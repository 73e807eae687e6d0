package http

import (
	"golang-portfolio/internal/dto"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSummary(base *echo.Group) {
	base.GET("/v1/summary", h.getSummary)
}

func (h *HttpAPIHandler) getSummary(c echo.Context) error {
	includeCleared, err := optionalBoolParam(c, "include_cleared")
	if err != nil {
		return h.respondBadRequest(c, err)
	}

	overview, err := h.service.LedgerService.Overview(c.Request().Context(), c.QueryParam("account_id"), includeCleared)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Summary retrieved", overview))
}
