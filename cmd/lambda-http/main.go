package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"reclamala-backend/internal/bootstrap"
	"reclamala-backend/internal/shared/config"
	"reclamala-backend/internal/shared/server/middleware"
	"reclamala-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	telemetry.SetLevel(cfg.LogLevel)
	if cfg.UploadsDir == "uploads" {
		// Only /tmp is writable inside Lambda.
		cfg.UploadsDir = "/tmp/uploads"
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": initErr.Error()})
		body, _ := json.Marshal(map[string]string{"error": middleware.ServerErrorMessage})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
