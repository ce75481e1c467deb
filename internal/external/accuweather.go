package external

import (
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

// accuWeatherAPIBase is the default AccuWeather API base URL.
// Overridable in tests via AccuWeatherClientConfig.BaseURL.
const accuWeatherAPIBase = "https://dataservice.accuweather.com"

// SourceName identifies the weather provider in prediction payloads.
const SourceName = "AccuWeather"

// AccuWeatherClientConfig holds the configuration for creating an
// AccuWeatherClient.
type AccuWeatherClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to accuWeatherAPIBase
	Logger  *slog.Logger
}

// AccuWeatherClient implements prediction.WeatherSource by calling the
// AccuWeather 12-hour hourly forecast API through BaseClient, so requests
// inherit the platform's resilience behavior (circuit breaker, retries,
// error mapping).
type AccuWeatherClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewAccuWeatherClient creates a new AccuWeatherClient. The httpClient
// timeout bounds each forecast fetch.
func NewAccuWeatherClient(httpClient *http.Client, cfg AccuWeatherClientConfig) *AccuWeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = accuWeatherAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"accuweather",
		DefaultRetryPolicy(),
		"SeasideBeacon/1.0",
	)

	return &AccuWeatherClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// hourlyEntry mirrors one element of the AccuWeather hourly forecast
// response. Only the fields the pipeline consumes are mapped.
type hourlyEntry struct {
	DateTime         time.Time `json:"DateTime"`
	IconPhrase       string    `json:"IconPhrase"`
	HasPrecipitation bool      `json:"HasPrecipitation"`
	Temperature      struct {
		Value float64 `json:"Value"`
	} `json:"Temperature"`
	RealFeelTemperature struct {
		Value float64 `json:"Value"`
	} `json:"RealFeelTemperature"`
	Wind struct {
		Speed struct {
			Value float64 `json:"Value"`
		} `json:"Speed"`
		Direction struct {
			Localized string `json:"Localized"`
		} `json:"Direction"`
	} `json:"Wind"`
	RelativeHumidity int `json:"RelativeHumidity"`
	Visibility       struct {
		Value float64 `json:"Value"`
	} `json:"Visibility"`
	UVIndex                  int `json:"UVIndex"`
	CloudCover               int `json:"CloudCover"`
	PrecipitationProbability int `json:"PrecipitationProbability"`
}

// HourlyForecast fetches the 12-hour hourly series for a location key.
// The series is returned in provider order (chronological). An empty or
// unparseable response maps to upstream_weather_unavailable.
func (c *AccuWeatherClient) HourlyForecast(ctx context.Context, locationKey string) ([]types.HourlyForecast, error) {
	endpoint := fmt.Sprintf("%s/forecasts/v1/hourly/12hour/%s", c.baseURL, url.PathEscape(locationKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building forecast request", err)
	}

	q := req.URL.Query()
	q.Set("apikey", c.apiKey)
	q.Set("details", "true")
	q.Set("metric", "true")
	req.URL.RawQuery = q.Encode()

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider request failed",
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather provider returned %d", resp.StatusCode),
			nil,
			map[string]any{"body": string(body)},
		)
	}

	var entries []hourlyEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider returned an unparseable response",
			err,
		)
	}

	if len(entries) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider returned an empty forecast series",
			nil,
		)
	}

	records := make([]types.HourlyForecast, 0, len(entries))
	for _, e := range entries {
		records = append(records, types.HourlyForecast{
			Timestamp:          e.DateTime.UTC(),
			Temperature:        e.Temperature.Value,
			FeelsLike:          e.RealFeelTemperature.Value,
			CloudCover:         e.CloudCover,
			Humidity:           e.RelativeHumidity,
			WindSpeed:          e.Wind.Speed.Value,
			WindDirection:      e.Wind.Direction.Localized,
			Visibility:         e.Visibility.Value,
			UVIndex:            e.UVIndex,
			PrecipProbability:  e.PrecipitationProbability,
			HasPrecipitation:   e.HasPrecipitation,
			WeatherDescription: e.IconPhrase,
		})
	}

	c.logger.DebugContext(ctx, "fetched hourly forecast",
		"location_key", locationKey,
		"hours", len(records),
	)

	return records, nil
}
