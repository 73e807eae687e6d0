package http

import (
	"golang-portfolio/internal/dto"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAccounts(base *echo.Group) {
	v1 := base.Group("/v1/accounts")
	{
		v1.GET("", h.listAccounts)
		v1.POST("", h.createAccount)
		v1.GET("/stats", h.accountStats)
		v1.GET("/:id", h.getAccount)
		v1.PUT("/:id", h.updateAccount)
		v1.DELETE("/:id", h.deleteAccount)
		v1.POST("/:id/default", h.setDefaultAccount)
	}
}

func (h *HttpAPIHandler) listAccounts(c echo.Context) error {
	accounts, err := h.service.AccountService.ListAccounts(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Accounts retrieved", accounts))
}

func (h *HttpAPIHandler) getAccount(c echo.Context) error {
	account, err := h.service.AccountService.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Account retrieved", account))
}

func (h *HttpAPIHandler) createAccount(c echo.Context) error {
	req := new(dto.CreateAccountRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}

	account, err := h.service.AccountService.CreateAccount(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Account created", account))
}

func (h *HttpAPIHandler) updateAccount(c echo.Context) error {
	req := new(dto.UpdateAccountRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}
	req.ID = c.Param("id")

	account, err := h.service.AccountService.UpdateAccount(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Account updated", account))
}

func (h *HttpAPIHandler) deleteAccount(c echo.Context) error {
	if err := h.service.AccountService.DeleteAccount(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Account deleted", nil))
}

func (h *HttpAPIHandler) setDefaultAccount(c echo.Context) error {
	account, err := h.service.AccountService.SetDefaultAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Default account set", account))
}

func (h *HttpAPIHandler) accountStats(c echo.Context) error {
	report, err := h.service.AccountService.Stats(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Account stats retrieved", report))
}
