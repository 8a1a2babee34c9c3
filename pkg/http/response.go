package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"titandash/pkg/meta"
)

// DataResponse writes API response with status and data.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// SuccessResponse writes success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// BadRequestResponse writes bad request error.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// UnauthorizedResponse writes a 401 carrying a no-data envelope so the
// consumer's provenance checks reject it instead of choking on it.
func UnauthorizedResponse(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, meta.NoData(reason))
}

// InternalServerErrorResponse writes a 500 carrying a no-data envelope.
func InternalServerErrorResponse(c echo.Context, reason string) error {
	return c.JSON(http.StatusInternalServerError, meta.NoData(reason))
}

// AppErrorResponse writes application error response.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c, "internal error")
}
