package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reclamala-backend/internal/descargo"
	"reclamala-backend/internal/llm"
	"reclamala-backend/internal/llm/gemini"
	"reclamala-backend/internal/ocr"
	"reclamala-backend/internal/ocr/vision"
	"reclamala-backend/internal/render"
	"reclamala-backend/internal/services/health"
	"reclamala-backend/internal/shared/config"
	"reclamala-backend/internal/shared/server"
	"reclamala-backend/internal/shared/server/middleware"
	localstore "reclamala-backend/internal/shared/storage/object/local"
	"reclamala-backend/internal/shared/telemetry"
	"reclamala-backend/internal/uploads"
)

// staleUploadAge is longer than any request can live, so a sweep never
// touches an upload that is still being processed.
const staleUploadAge = 10 * time.Minute

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Store           *localstore.Store
	Receiver        *uploads.Receiver
	Extractor       ocr.Extractor
	Generator       llm.Generator
	Renderer        *render.Renderer
	Pipeline        *descargo.Pipeline
	DescargoHandler *descargo.Handler
}

// Options overrides external clients, mainly for tests.
type Options struct {
	Extractor ocr.Extractor
	Generator llm.Generator
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Options{})
}

// BuildWith is Build with optional client overrides.
func BuildWith(cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.UploadsDir) == "" {
		cfg.UploadsDir = "uploads"
	}
	ctx := context.Background()

	store, err := localstore.New(cfg.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("uploads dir: %w", err)
	}
	removed, err := store.Sweep(ctx, staleUploadAge)
	if err != nil {
		telemetry.Warn("uploads.sweep.failed", map[string]any{"dir": cfg.UploadsDir, "err": err.Error()})
	} else if removed > 0 {
		telemetry.Info("uploads.sweep", map[string]any{"dir": cfg.UploadsDir, "removed": removed})
	}

	extractor := opts.Extractor
	if extractor == nil {
		client, err := vision.NewClientFromKeyFile(ctx, cfg.VisionKeyPath, cfg.OCRTimeout)
		if err != nil {
			return nil, err
		}
		extractor = client
	}

	generator := opts.Generator
	if generator == nil {
		client, err := gemini.NewClient(cfg.GoogleAIAPIKey, cfg.GenerationModel, cfg.GenerationTimeout)
		if err != nil {
			return nil, err
		}
		generator = client
	}

	app := &App{
		Config:    cfg,
		Store:     store,
		Receiver:  uploads.NewReceiver(store, cfg.MaxUploadBytes),
		Extractor: extractor,
		Generator: generator,
		Renderer:  render.NewRenderer(),
	}
	app.Pipeline = &descargo.Pipeline{
		Receiver:          app.Receiver,
		Extractor:         app.Extractor,
		Generator:         app.Generator,
		Renderer:          app.Renderer,
		OCRTimeout:        cfg.OCRTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	}
	app.DescargoHandler = descargo.NewHandler(app.Pipeline, cfg.MaxUploadBytes)

	router, err := server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          health.NewService(),
		DescargoHandler: app.DescargoHandler,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})
	if err != nil {
		return nil, err
	}
	app.Router = router

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"uploads_dir": cfg.UploadsDir,
		"model":       cfg.GenerationModel,
	})
	return app, nil
}
