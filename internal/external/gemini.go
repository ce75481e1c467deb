package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seasidebeacon/internal/types"
)

// geminiAPIBase is the default Gemini API base URL.
// Overridable in tests via GeminiClientConfig.BaseURL.
const geminiAPIBase = "https://generativelanguage.googleapis.com"

// GeminiClientConfig holds the configuration for creating a GeminiClient.
type GeminiClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Override for testing; defaults to geminiAPIBase
	Logger  *slog.Logger
}

// GeminiClient implements insights.TextGenerator by calling the Gemini
// generateContent API through BaseClient. The caller is responsible for
// prompt construction and response parsing; this client only moves text.
type GeminiClient struct {
	base    *BaseClient
	apiKey  string
	model   string
	baseURL string
	logger  *slog.Logger
}

// NewGeminiClient creates a new GeminiClient.
func NewGeminiClient(httpClient *http.Client, cfg GeminiClientConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"gemini",
		RetryPolicy{
			MaxRetries: 1,
			MinWait:    500 * time.Millisecond,
			MaxWait:    3 * time.Second,
		},
		"SeasideBeacon/1.0",
		WithSleepFunc(time.Sleep),
	)

	return &GeminiClient{
		base:    base,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse holds the subset of the generateContent response the
// pipeline consumes.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateInsight sends a prompt to the configured Gemini model and
// returns the first candidate's text. All failures map to
// insight_generation_failed so callers can fall back without inspecting
// transport details.
func (g *GeminiClient) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal Gemini request payload",
			err,
		)
	}

	reqURL := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL,
		url.PathEscape(g.model),
		url.QueryEscape(g.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create Gemini request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.base.Do(req)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInsightGeneration,
			"Gemini request failed",
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", types.NewAppError(
			types.ErrCodeInsightGeneration,
			fmt.Sprintf("Gemini returned status %d: %s", resp.StatusCode, string(respBody)),
			nil,
		)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", types.NewAppError(
			types.ErrCodeInsightGeneration,
			"Gemini returned an unparseable response",
			err,
		)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", types.NewAppError(
			types.ErrCodeInsightGeneration,
			"Gemini returned no candidates",
			nil,
		)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", types.NewAppError(
			types.ErrCodeInsightGeneration,
			"Gemini returned an empty candidate",
			nil,
		)
	}

	g.logger.DebugContext(ctx, "generated insight text", "model", g.model, "chars", len(text))

	return text, nil
}
