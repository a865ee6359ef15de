package handlers

import (
	"net/http"

	"fleet-tracker/internal/repositories/base"
	"fleet-tracker/internal/utils"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error as a standard error body and maps
// repository errors that escape a handler unwrapped to an HTTP status.
func HTTPErrorHandler(logger *utils.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		switch {
		case base.IsEntityNotFound(err):
			status = http.StatusNotFound
			message = err.Error()
		case base.IsDuplicateEntity(err):
			status = http.StatusConflict
			message = err.Error()
		case base.IsStorageError(err):
			logger.Errorf("Storage error reached the HTTP layer: %v", err)
		default:
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
				if msg, ok := httpErr.Message.(string); ok {
					message = msg
				}
			} else {
				logger.Errorf("Unhandled error reached the HTTP layer: %v", err)
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, utils.ErrorResponse(message))
	}
}
