package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// DataResponse writes data with status.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ErrorResponse writes err as a list of errors. Validation failures become
// 400, AppErrors keep their status and anything else is a 500 with no detail.
func ErrorResponse(c echo.Context, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return writeErrors(c, http.StatusBadRequest, verrs)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return writeErrors(c, appErr.Status, []*AppError{appErr})
	}
	return writeErrors(c, http.StatusInternalServerError, []*AppError{InternalError("Something went wrong")})
}

func writeErrors(c echo.Context, status int, errs interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Errors:  errs,
	})
}
