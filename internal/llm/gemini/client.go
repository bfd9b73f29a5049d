package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reclamala-backend/internal/llm"
	"reclamala-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"

	maxResponseBytes = 2 << 20
)

// Client implements llm.Generator using the Generative Language API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(raw, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient constructs a Gemini client.
func NewClient(apiKey, model string, timeout time.Duration, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GOOGLE_AI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	c := &Client{
		apiKey:  apiKey,
		model:   strings.TrimSpace(model),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	Error         *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// GenerateLetter makes exactly one generateContent call. Every failure is
// reported as llm.ErrGenerationFailed; the wrapped detail is for logs only.
func (c *Client) GenerateLetter(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		telemetry.Error("llm.generate.failed", map[string]any{
			"model":       c.model,
			"prompt_hash": llm.PromptHash(prompt),
			"err":         err.Error(),
		})
		return "", fmt.Errorf("%w: %v", llm.ErrGenerationFailed, err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.4)
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: generationConfig{Temperature: &temp},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("gemini http status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini http status %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Status)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini http status %d", resp.StatusCode)
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini prompt blocked: %s", parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}
	logUsage(c.model, prompt, parsed.UsageMetadata, parsed.Candidates[0].FinishReason)

	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func logUsage(model, prompt string, usage *usageMetadata, finishReason string) {
	fields := map[string]any{
		"model":         model,
		"prompt_hash":   llm.PromptHash(prompt),
		"finish_reason": finishReason,
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokenCount
		fields["completion_tokens"] = usage.CandidatesTokenCount
		fields["total_tokens"] = usage.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Generator = (*Client)(nil)
