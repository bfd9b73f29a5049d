package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"reclamala-backend/internal/shared/server/respond"
	"reclamala-backend/internal/shared/telemetry"
)

// ServerErrorMessage is returned for any error nobody else handled.
const ServerErrorMessage = "Ocurrió un error en el servidor"

// Recovery is the catch-all: panics and errors left on the context by handlers
// that did not write a response become a generic 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				if c.Writer.Written() {
					c.Abort()
					return
				}
				respond.Error(c, http.StatusInternalServerError, "internal", ServerErrorMessage)
			}
		}()
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			telemetry.Error("unhandled.error", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      c.Errors.String(),
				"path":       c.Request.URL.Path,
			})
			respond.Error(c, http.StatusInternalServerError, "internal", ServerErrorMessage)
		}
	}
}
