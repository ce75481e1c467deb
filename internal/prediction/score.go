package prediction

import (
	"math"

	"seasidebeacon/internal/types"
)

// Verdict thresholds (inclusive lower bounds, descending).
const (
	thresholdExcellent = 80
	thresholdGood      = 65
	thresholdFair      = 50
	thresholdPoor      = 35
)

// Score maps one forecast record to a visibility/photography suitability
// score in [0,100]. It starts at 100 and applies independent penalty and
// bonus terms, then clamps and rounds:
//
//	cloud cover        -0.4 per percent
//	visibility         -20 below 5 km, -10 below 8 km
//	precip probability -0.15 per percent
//	UV index           -10 below 2, +5 at 4 or above
//	wind speed         -5 above 30 km/h, -2 above 20 km/h
//	active precip      -10
func Score(rec types.HourlyForecast) int {
	score := 100.0

	score -= float64(rec.CloudCover) * 0.4

	if rec.Visibility < 5 {
		score -= 20
	} else if rec.Visibility < 8 {
		score -= 10
	}

	score -= float64(rec.PrecipProbability) * 0.15

	if rec.UVIndex < 2 {
		score -= 10
	} else if rec.UVIndex >= 4 {
		score += 5
	}

	if rec.WindSpeed > 30 {
		score -= 5
	} else if rec.WindSpeed > 20 {
		score -= 2
	}

	if rec.HasPrecipitation {
		score -= 10
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// VerdictFor converts a score into its discrete verdict label. Total over
// all integers: every score maps to exactly one verdict.
func VerdictFor(score int) types.Verdict {
	switch {
	case score >= thresholdExcellent:
		return types.VerdictExcellent
	case score >= thresholdGood:
		return types.VerdictGood
	case score >= thresholdFair:
		return types.VerdictFair
	case score >= thresholdPoor:
		return types.VerdictPoor
	default:
		return types.VerdictVeryPoor
	}
}

// FactorsFor derives the categorical factor labels. Each label is a pure
// function of a single forecast field, independent of the overall score.
func FactorsFor(rec types.HourlyForecast) types.Factors {
	var f types.Factors

	switch {
	case rec.CloudCover <= 30:
		f.CloudCover = "Clear"
	case rec.CloudCover <= 60:
		f.CloudCover = "Partly Cloudy"
	default:
		f.CloudCover = "Cloudy"
	}

	switch {
	case rec.Visibility >= 8:
		f.Visibility = "Excellent"
	case rec.Visibility >= 5:
		f.Visibility = "Good"
	default:
		f.Visibility = "Poor"
	}

	switch {
	case rec.PrecipProbability <= 20:
		f.Precipitation = "Low"
	case rec.PrecipProbability <= 50:
		f.Precipitation = "Moderate"
	default:
		f.Precipitation = "High"
	}

	switch {
	case rec.WindSpeed <= 20:
		f.Wind = "Calm"
	case rec.WindSpeed <= 35:
		f.Wind = "Moderate"
	default:
		f.Wind = "Strong"
	}

	return f
}
