package external

import (
	"context"

	"seasidebeacon/internal/types"
)

// ---------------------------------------------------------------------------
// Weather Integration (AccuWeather)
// ---------------------------------------------------------------------------

// WeatherSource abstracts the hourly forecast provider. Implementations
// return the raw hourly series for a provider location key; selection and
// scoring happen downstream.
type WeatherSource interface {
	// HourlyForecast fetches the hourly forecast series for a location key.
	HourlyForecast(ctx context.Context, locationKey string) ([]types.HourlyForecast, error)
}

// ---------------------------------------------------------------------------
// Email Integration (Brevo)
// ---------------------------------------------------------------------------

// EmailProvider abstracts interactions with the email delivery service.
// Implementations transmit pre-rendered email content (Subject, BodyHTML, BodyText).
type EmailProvider interface {
	// Send transmits an email with pre-rendered content.
	// Returns the provider's message ID for tracking and correlation.
	Send(ctx context.Context, input types.SendInput) (providerMsgID string, err error)
}

// ---------------------------------------------------------------------------
// Text Generation (Gemini)
// ---------------------------------------------------------------------------

// TextGenerator abstracts a model that turns a prompt into free text. The
// insight pipeline owns prompt construction and response parsing.
type TextGenerator interface {
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}

// Compile-time interface assertions.
var (
	_ WeatherSource = (*AccuWeatherClient)(nil)
	_ EmailProvider = (*BrevoClient)(nil)
	_ TextGenerator = (*GeminiClient)(nil)
)
