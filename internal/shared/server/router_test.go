package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reclamala-backend/internal/descargo"
	"reclamala-backend/internal/render"
	"reclamala-backend/internal/services/health"
	"reclamala-backend/internal/shared/config"
	"reclamala-backend/internal/shared/server/middleware"
	"reclamala-backend/internal/shared/storage/object/local"
	"reclamala-backend/internal/uploads"
)

type noopExtractor struct{}

func (noopExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return "ACTA", nil
}

type noopGenerator struct{}

func (noopGenerator) GenerateLetter(ctx context.Context, prompt string) (string, error) {
	return "Señor Juez", nil
}

func newTestRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	store, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	pipeline := &descargo.Pipeline{
		Receiver:  uploads.NewReceiver(store, 0),
		Extractor: noopExtractor{},
		Generator: noopGenerator{},
		Renderer:  render.NewRenderer(),
	}
	r, err := NewRouter(RouterDeps{
		Config:          cfg,
		Health:          health.NewService(),
		DescargoHandler: descargo.NewHandler(pipeline, 0),
		RateLimiter:     middleware.NewRateLimiter(nil),
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return r
}

func TestRootReportsOnline(t *testing.T) {
	r := newTestRouter(t, config.Config{RateLimitPerMinute: 6, RateLimitBurst: 3})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload health.Status
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "online" || payload.Timestamp == "" || len(payload.Endpoints) == 0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMetricsExposed(t *testing.T) {
	r := newTestRouter(t, config.Config{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "descargo_started_total") {
		t.Fatalf("expected descargo counters, got %s", resp.Body.String())
	}
}

func TestDescargoRouteMissingImage(t *testing.T) {
	r := newTestRouter(t, config.Config{RateLimitPerMinute: 6, RateLimitBurst: 3})

	req := httptest.NewRequest(http.MethodPost, "/api/descargo", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "No se proporcionó imagen") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestDescargoRouteRateLimited(t *testing.T) {
	r := newTestRouter(t, config.Config{RateLimitPerMinute: 1, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/descargo", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, config.Config{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	tests := map[string]string{"": ":3001", "8080": ":8080", ":9000": ":9000"}
	for in, want := range tests {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
