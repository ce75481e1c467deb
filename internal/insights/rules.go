// Package insights produces photography recommendation payloads for a scored
// sunrise forecast. The rule-based generator is a pure, total function and
// doubles as the silent fallback for the generative-text path.
package insights

import (
	"fmt"
	"strings"

	"seasidebeacon/internal/types"
)

// Golden hour is a fixed clock range; quality varies with cloud cover.
const (
	goldenHourStart = "5:45 AM"
	goldenHourEnd   = "7:00 AM"
)

// maxCompositionTips caps each tip list regardless of how many candidates
// the banding produced.
const maxCompositionTips = 3

// dslrTipBank and mobileTipBank hold the two band-derived composition tips
// per cloud-cover band: clear (<30), scattered (<60), overcast.
var dslrTipBank = map[string][]string{
	"clear": {
		"Use rule of thirds to balance the bright sun with foreground elements",
		"Silhouette subjects against the colorful sky for dramatic contrast",
	},
	"scattered": {
		"Capture cloud formations as leading lines toward the horizon",
		"Look for gaps where sunlight creates spotlight effects",
	},
	"overcast": {
		"Focus on minimalist compositions with simplified palettes",
		"Use long exposures for smooth, ethereal water surfaces",
	},
}

var mobileTipBank = map[string][]string{
	"clear": {
		"Tap to expose for the sky, then drag the exposure slider down slightly",
		"Shoot silhouettes from a low angle with the sun just above the horizon",
	},
	"scattered": {
		"Enable HDR so both the lit clouds and the shaded sand hold detail",
		"Use the 2x lens to compress cloud layers against the horizon",
	},
	"overcast": {
		"Switch to night or pro mode for longer handheld exposures of the water",
		"Lean on the diffused light for even, shadow-free beach portraits",
	},
}

// beachTips maps a beach-name substring to its fixed location tip. The
// generic tip covers unrecognized names.
var beachTips = []struct {
	match string
	tip   string
}{
	{"Marina", "Include the lighthouse or fishing boats as foreground interest"},
	{"Elliot", "Beach sculptures and clean sand make excellent foregrounds"},
}

const genericBeachTip = "Use natural rock formations to frame your composition"

// RuleBased is the deterministic insight generator. It never fails: every
// combination of inputs produces a complete payload.
type RuleBased struct{}

// NewRuleBased returns the rule-based generator.
func NewRuleBased() *RuleBased { return &RuleBased{} }

// Generate builds the recommendation payload from the beach, the selected
// forecast record, and its score. Deterministic: identical inputs always
// yield identical output.
func (RuleBased) Generate(beach types.Beach, forecast types.HourlyForecast, score int) types.Insight {
	band := cloudBand(forecast.CloudCover)

	return types.Insight{
		Source:   types.InsightSourceRules,
		Greeting: greetingFor(beach.Name, score),
		Insight:  narrativeFor(band),
		GoldenHour: types.GoldenHour{
			Start:   goldenHourStart,
			End:     goldenHourEnd,
			Quality: goldenHourQuality(forecast.CloudCover),
		},
		DSLR: types.GearGuide{
			Settings:        dslrSettings(forecast.CloudCover),
			CompositionTips: tipsFor(dslrTipBank[band], beach.Name),
		},
		Mobile: types.GearGuide{
			Settings:        mobileSettings(forecast.CloudCover),
			CompositionTips: tipsFor(mobileTipBank[band], beach.Name),
		},
	}
}

// cloudBand buckets cloud cover into the three narrative bands.
func cloudBand(cloudCover int) string {
	switch {
	case cloudCover < 30:
		return "clear"
	case cloudCover < 60:
		return "scattered"
	default:
		return "overcast"
	}
}

func greetingFor(beachName string, score int) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Spectacular conditions at %s!", beachName)
	case score >= 65:
		return fmt.Sprintf("Promising sunrise ahead at %s!", beachName)
	case score >= 50:
		return fmt.Sprintf("Interesting conditions at %s.", beachName)
	default:
		return fmt.Sprintf("Moody atmosphere at %s.", beachName)
	}
}

func narrativeFor(band string) string {
	switch band {
	case "clear":
		return "Clear skies will produce vibrant colors with strong directional light. Perfect for silhouettes and dramatic compositions."
	case "scattered":
		return "Scattered clouds create dynamic lighting with rays breaking through. Excellent for dramatic skies and textured compositions."
	default:
		return "Heavy cloud cover provides soft, diffused light ideal for minimalist compositions and moody atmospheres."
	}
}

func goldenHourQuality(cloudCover int) string {
	switch {
	case cloudCover < 30:
		return "Excellent"
	case cloudCover < 60:
		return "Good"
	default:
		return "Fair"
	}
}

// dslrSettings derives exposure settings from independent cloud-cover
// thresholds. ISO rises with cloud cover; shutter speed and aperture favor
// brighter settings as skies clear.
func dslrSettings(cloudCover int) types.CameraSettings {
	s := types.CameraSettings{}

	switch {
	case cloudCover > 60:
		s.ISO = "400"
	case cloudCover > 30:
		s.ISO = "200"
	default:
		s.ISO = "100"
	}

	switch {
	case cloudCover < 30:
		s.ShutterSpeed = "1/250"
	case cloudCover < 60:
		s.ShutterSpeed = "1/125"
	default:
		s.ShutterSpeed = "1/60"
	}

	switch {
	case cloudCover < 40:
		s.Aperture = "f/11"
	case cloudCover < 70:
		s.Aperture = "f/8"
	default:
		s.Aperture = "f/5.6"
	}

	if cloudCover < 30 {
		s.WhiteBalance = "5500K"
	} else {
		s.WhiteBalance = "6000K"
	}

	return s
}

// mobileSettings mirrors the DSLR banding for phone cameras. Phone apertures
// are fixed, so the aperture field reports the lens rather than a choice.
func mobileSettings(cloudCover int) types.CameraSettings {
	s := types.CameraSettings{
		Aperture: "f/1.8 (fixed lens)",
	}

	switch {
	case cloudCover > 60:
		s.ISO = "800"
	case cloudCover > 30:
		s.ISO = "400"
	default:
		s.ISO = "200"
	}

	switch {
	case cloudCover < 30:
		s.ShutterSpeed = "1/500"
	case cloudCover < 60:
		s.ShutterSpeed = "1/250"
	default:
		s.ShutterSpeed = "1/120"
	}

	if cloudCover < 30 {
		s.WhiteBalance = "Daylight lock"
	} else {
		s.WhiteBalance = "Auto"
	}

	return s
}

// tipsFor appends the beach-specific tip to the two band tips and truncates
// to the cap. The shared beach tip lands in both the DSLR and mobile lists.
func tipsFor(bandTips []string, beachName string) []string {
	tips := make([]string, 0, len(bandTips)+1)
	tips = append(tips, bandTips...)
	tips = append(tips, beachTipFor(beachName))

	if len(tips) > maxCompositionTips {
		tips = tips[:maxCompositionTips]
	}
	return tips
}

func beachTipFor(beachName string) string {
	for _, bt := range beachTips {
		if strings.Contains(beachName, bt.match) {
			return bt.tip
		}
	}
	return genericBeachTip
}
