package http

import (
	"errors"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/service"
	"golang-portfolio/pkg/logger"
	"net/http"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	badRequestErrors = []error{
		service.ErrInvalidPrice,
		service.ErrInvalidQuantity,
		service.ErrInvalidTradeType,
		service.ErrInsufficientQuantity,
		service.ErrQuoteNotFound,
		service.ErrInvalidPosition,
		service.ErrInvalidImport,
		service.ErrInvalidDate,
	}
	notFoundErrors = []error{
		service.ErrPositionNotFound,
		service.ErrAccountNotFound,
		service.ErrReviewNotFound,
		service.ErrTagNotFound,
	}
	conflictErrors = []error{
		service.ErrSymbolExists,
		service.ErrTagExists,
		service.ErrNoDefaultAccount,
		service.ErrCannotDeleteDefaultAccount,
	}
)

func statusOf(err error) int {
	var validationErrs goValidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusBadRequest, badRequestErrors},
		{http.StatusNotFound, notFoundErrors},
		{http.StatusConflict, conflictErrors},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err in the standard envelope. Unexpected errors are
// logged and hidden behind a generic message.
func (h *HttpAPIHandler) respondError(c echo.Context, err error) error {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(c.Request().Context(), "Request failed", logger.ErrorField(err))
		message = "internal server error"
	}
	return c.JSON(status, dto.NewBaseResponse(status, message, nil))
}

// bind decodes the request into req and runs struct validation.
func (h *HttpAPIHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	return h.validator.Struct(req)
}

func (h *HttpAPIHandler) respondBadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
}
