package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"reclamala-backend/internal/ocr"
)

const (
	annotateURL = "https://vision.googleapis.com/v1/images:annotate"
	visionScope = "https://www.googleapis.com/auth/cloud-vision"

	maxResponseBytes = 4 << 20
)

// Client implements ocr.Extractor with Google Cloud Vision TEXT_DETECTION.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClientFromKeyFile authenticates with a service-account key file.
func NewClientFromKeyFile(ctx context.Context, keyPath string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(keyPath) == "" {
		return nil, fmt.Errorf("GOOGLE_VISION_KEY_PATH is required")
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read vision key file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, visionScope)
	if err != nil {
		return nil, fmt.Errorf("parse vision credentials: %w", err)
	}
	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient.Timeout = timeout
	return NewClient(httpClient, annotateURL), nil
}

// NewClient builds a client against an explicit endpoint; the http client is
// expected to carry authentication.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = annotateURL
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    image     `json:"image"`
	Features []feature `json:"features"`
}

type image struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Locale      string `json:"locale"`
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *apiError `json:"error,omitempty"`
	} `json:"responses"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ExtractText returns the full-text annotation, which Vision always places first.
func (c *Client) ExtractText(ctx context.Context, imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	payload, err := json.Marshal(annotateRequest{
		Requests: []imageRequest{{
			Image:    image{Content: base64.StdEncoding.EncodeToString(raw)},
			Features: []feature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%w: vision request timeout: %v", ocr.ErrService, err)
		}
		return "", fmt.Errorf("%w: %v", ocr.ErrService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ocr.ErrService, err)
	}

	var parsed annotateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("%w: vision http status %d", ocr.ErrService, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: vision response parse: %v", ocr.ErrService, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: vision http status %d: %s (%s)", ocr.ErrService, resp.StatusCode, parsed.Error.Message, parsed.Error.Status)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: vision http status %d", ocr.ErrService, resp.StatusCode)
	}
	if len(parsed.Responses) == 0 {
		return "", fmt.Errorf("%w: vision response missing responses", ocr.ErrService)
	}

	first := parsed.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("%w: vision annotate error: %s (%s)", ocr.ErrService, first.Error.Message, first.Error.Status)
	}
	if len(first.TextAnnotations) == 0 || strings.TrimSpace(first.TextAnnotations[0].Description) == "" {
		return "", ocr.ErrNoText
	}
	return first.TextAnnotations[0].Description, nil
}

var _ ocr.Extractor = (*Client)(nil)
