package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seasidebeacon/internal/types"
)

// brevoAPIBase is the default Brevo API base URL.
// Overridable in tests via BrevoClientConfig.BaseURL.
const brevoAPIBase = "https://api.brevo.com"

// BrevoClientConfig holds the configuration for creating a BrevoClient.
type BrevoClientConfig struct {
	APIKey      string
	BaseURL     string // Override for testing; defaults to brevoAPIBase
	FromAddress string
	FromName    string
	Logger      *slog.Logger
}

// BrevoClient delivers transactional email by making direct HTTP calls to
// the Brevo v3 SMTP API through BaseClient. This approach routes all
// requests through the platform's resilience infrastructure (circuit
// breaker, retries, error mapping) and makes testing with httptest
// straightforward.
type BrevoClient struct {
	base        *BaseClient
	apiKey      string
	baseURL     string
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

// NewBrevoClient creates a new BrevoClient. The httpClient timeout bounds
// each send.
func NewBrevoClient(
	httpClient *http.Client,
	cfg BrevoClientConfig,
) *BrevoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = brevoAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"brevo",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"SeasideBeacon/1.0",
		WithSleepFunc(time.Sleep),
	)

	return &BrevoClient{
		base:        base,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

// NewBrevoClientWithBase creates a BrevoClient with a pre-configured
// BaseClient. This is useful for testing when you want to control the
// BaseClient configuration (e.g., disable retries).
func NewBrevoClientWithBase(
	base *BaseClient,
	cfg BrevoClientConfig,
) *BrevoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = brevoAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BrevoClient{
		base:        base,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

// ---------------------------------------------------------------------------
// EmailProvider Implementation
// ---------------------------------------------------------------------------

// Send transmits an email using Brevo's v3 transactional SMTP API. It maps
// the domain types.SendInput to the Brevo smtp/email JSON payload and
// returns the provider message ID on success.
//
// Error mapping:
//   - 429 Too Many Requests -> handled by BaseClient (retry + ErrCodeUpstreamRateLimited)
//   - 5xx -> handled by BaseClient (retry + ErrCodeUpstreamUnavailable)
//   - Other 4xx -> types.ErrCodeUpstreamEmailProvider
func (b *BrevoClient) Send(ctx context.Context, input types.SendInput) (string, error) {
	payload := b.buildMailPayload(input)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal Brevo mail payload",
			err,
		)
	}

	reqURL := b.baseURL + "/v3/smtp/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create Brevo send request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.base.Do(req)
	if err != nil {
		return "", b.wrapBrevoError("Send", err)
	}
	defer resp.Body.Close()

	// Brevo returns 201 Created on success (200 when batching).
	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var ok brevoSendResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&ok); decodeErr != nil {
			// Delivery was accepted; a missing message ID is not an error.
			return "", nil
		}
		return ok.MessageID, nil
	}

	return "", b.handleErrorResponse(resp, "Send")
}

// ---------------------------------------------------------------------------
// Payload Construction
// ---------------------------------------------------------------------------

// brevoMailPayload represents the Brevo v3 smtp/email JSON request body.
type brevoMailPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// brevoSendResponse is the success body returned by Brevo.
type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}

// buildMailPayload maps a domain types.SendInput to the Brevo v3 payload.
func (b *BrevoClient) buildMailPayload(input types.SendInput) brevoMailPayload {
	return brevoMailPayload{
		Sender: brevoAddress{
			Email: b.fromAddress,
			Name:  b.fromName,
		},
		To: []brevoAddress{
			{Email: input.ToAddress, Name: input.ToName},
		},
		Subject:     input.Subject,
		HTMLContent: input.BodyHTML,
		TextContent: input.BodyText,
	}
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

// brevoErrorResponse represents the JSON error body returned by Brevo.
type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleErrorResponse reads a Brevo error response and maps it to a
// types.AppError.
func (b *BrevoClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("%s: Brevo returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var apiErr brevoErrorResponse
	errMsg := ""
	if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
		errMsg = apiErr.Message
	} else {
		errMsg = string(body)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("%s: Brevo rate limit exceeded", operation),
			nil,
		)
	case resp.StatusCode >= 500:
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s: Brevo server error: %s", operation, errMsg),
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("%s: Brevo error (%d): %s", operation, resp.StatusCode, errMsg),
			nil,
		)
	}
}

// wrapBrevoError wraps a BaseClient transport error with context.
func (b *BrevoClient) wrapBrevoError(operation string, err error) error {
	// AppErrors from BaseClient (circuit breaker, retries exhausted) already
	// carry the right error code.
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamEmailProvider,
		fmt.Sprintf("%s: Brevo request failed: %v", operation, err),
		err,
	)
}
