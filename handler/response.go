package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"contracthub/pkg/apperr"
	"contracthub/pkg/logger"
)

// Response is the uniform success envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// fail maps any error onto the error envelope. Unanticipated errors become a
// generic 500; their detail goes to the server log only.
func fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		logger.Error(c.Request.Context(), "request failed",
			"error", appErr.Err,
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(appErr.Status, ErrorResponse{
		StatusCode: appErr.Status,
		Message:    appErr.Message,
		Error:      appErr.Code,
	})
}

// failValidation collapses field errors into one human-readable message.
func failValidation(c *gin.Context, fieldErrors []string) {
	fail(c, apperr.Validation(strings.Join(fieldErrors, "; ")))
}
