package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultOrigin = "http://localhost:5173"

// CORS allows the browser form origins to post multipart requests and read
// the download headers.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{defaultOrigin}
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           10 * time.Minute,
	})
}
