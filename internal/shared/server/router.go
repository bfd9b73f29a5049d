package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"reclamala-backend/internal/citizen"
	"reclamala-backend/internal/descargo"
	"reclamala-backend/internal/services/health"
	"reclamala-backend/internal/shared/config"
	"reclamala-backend/internal/shared/metrics"
	"reclamala-backend/internal/shared/server/middleware"
	"reclamala-backend/internal/shared/server/respond"
)

// RouterDeps holds the handlers mounted on the engine.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	DescargoHandler *descargo.Handler
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	if deps.DescargoHandler != nil {
		limit := middleware.RateLimit(
			middleware.PerMinute(deps.Config.RateLimitPerMinute, deps.Config.RateLimitBurst),
			deps.RateLimiter,
		)
		deps.DescargoHandler.RegisterRoutes(r.Group("/api"), limit)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Ruta no encontrada")
	})

	return r, nil
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return citizen.RegisterValidators(v)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3001"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
