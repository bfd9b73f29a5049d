package respond

import (
	"github.com/gin-gonic/gin"

	"reclamala-backend/internal/shared/telemetry"
)

// ErrorResponse is the JSON error payload returned to the browser form.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error sends an error response and logs it.
func Error(c *gin.Context, status int, code, message string) {
	ErrorWithFields(c, status, code, message, nil)
}

// ErrorWithFields sends an error response carrying per-field validation messages.
func ErrorWithFields(c *gin.Context, status int, code, message string, fields map[string]string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:  message,
		Code:   code,
		Fields: fields,
	})
}
