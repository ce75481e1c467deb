package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"seasidebeacon/internal/beaches"
	"seasidebeacon/internal/types"
)

// unavailableMessage is returned in the gated-closed payload.
const unavailableMessage = "Predictions available after 6 PM IST"

// forecastTimeLayout formats the selected forecast instant in IST for the
// client payload.
const forecastTimeLayout = "Monday, 2 January 2006, 3:04 PM"

// WeatherSource fetches the hourly forecast series for an upstream location
// key. Implementations must return an ordered, non-empty series or an error.
type WeatherSource interface {
	HourlyForecast(ctx context.Context, locationKey string) ([]types.HourlyForecast, error)
}

// Service is the prediction pipeline entry point consumed by the API layer
// and the daily dispatcher.
type Service interface {
	// GetPrediction runs the full pipeline for one beach at the given
	// instant. When the availability window is closed it returns a
	// structured unavailable payload, not an error. UnknownBeach and
	// upstream failures are the only error returns.
	GetPrediction(ctx context.Context, beachKey string, now time.Time) (*types.PredictionResult, error)

	// Beaches lists every configured beach in registration order.
	Beaches() []types.Beach
}

// service is the concrete Service implementation.
type service struct {
	weather    WeatherSource
	sourceName string
	logger     *slog.Logger
}

// NewService creates the prediction Service. sourceName identifies the
// upstream provider in result payloads (e.g. "AccuWeather").
func NewService(weather WeatherSource, sourceName string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		weather:    weather,
		sourceName: sourceName,
		logger:     logger,
	}
}

// Beaches returns the static registry.
func (s *service) Beaches() []types.Beach {
	return beaches.All()
}

// GetPrediction implements the pipeline:
//  1. Resolve the beach (unknown key is fatal for the request).
//  2. Gate on the availability window; closed returns available:false.
//  3. Fetch the hourly series (exactly one upstream call).
//  4. Select the record nearest the next 6 AM IST target.
//  5. Score, label, and assemble the result.
func (s *service) GetPrediction(ctx context.Context, beachKey string, now time.Time) (*types.PredictionResult, error) {
	beach, err := beaches.Lookup(beachKey)
	if err != nil {
		return nil, err
	}

	if wait, gated := UntilAvailable(now); gated {
		return &types.PredictionResult{
			Available:          false,
			Beach:              beach.Name,
			BeachKey:           beach.Key,
			TimeUntilAvailable: &wait,
			Message:            unavailableMessage,
		}, nil
	}

	records, err := s.weather.HourlyForecast(ctx, beach.LocationKey)
	if err != nil {
		return nil, err
	}

	target := ResolveTarget(now)
	selected, ok := SelectNearest(records, target)
	if !ok {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"upstream returned an empty forecast series",
			nil,
		)
	}

	s.logger.DebugContext(ctx, "forecast record selected",
		"beach", beach.Key,
		"target", target,
		"selected", selected.Timestamp,
	)

	score := Score(selected)
	result := &types.PredictionResult{
		Available:   true,
		Beach:       beach.Name,
		BeachKey:    beach.Key,
		Coordinates: &beach.Coordinates,
		Forecast:    viewOf(selected),
		Prediction: &types.Prediction{
			Score:   score,
			Verdict: VerdictFor(score),
			Factors: FactorsFor(selected),
		},
		Source: s.sourceName,
		Raw:    &selected,
	}

	return result, nil
}

// viewOf projects an HourlyForecast into its rounded, IST-formatted client
// shape.
func viewOf(rec types.HourlyForecast) *types.ForecastView {
	return &types.ForecastView{
		Temperature:        int(math.Round(rec.Temperature)),
		FeelsLike:          int(math.Round(rec.FeelsLike)),
		CloudCover:         rec.CloudCover,
		Humidity:           rec.Humidity,
		WindSpeed:          int(math.Round(rec.WindSpeed)),
		WindDirection:      rec.WindDirection,
		Visibility:         rec.Visibility,
		UVIndex:            rec.UVIndex,
		PrecipProbability:  rec.PrecipProbability,
		WeatherDescription: rec.WeatherDescription,
		HasPrecipitation:   rec.HasPrecipitation,
		ForecastTime:       fmt.Sprintf("%s IST", rec.Timestamp.In(IST).Format(forecastTimeLayout)),
	}
}
