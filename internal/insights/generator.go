package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"seasidebeacon/internal/types"
)

// TextGenerator is the external generative-text capability. Implementations
// send a prompt and return the raw model text. Absence (a nil TextGenerator)
// is a valid configuration state, not an error.
type TextGenerator interface {
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}

// Generator produces photography insights, preferring the external
// generative model when one is configured and falling back to the
// deterministic rule-based payload on any failure. Generate never returns
// an error: an insight is always produced.
type Generator struct {
	ai     TextGenerator // nil when not configured
	rules  *RuleBased
	logger *slog.Logger
}

// NewGenerator creates an insight Generator. ai may be nil to run purely
// rule-based.
func NewGenerator(ai TextGenerator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		ai:     ai,
		rules:  NewRuleBased(),
		logger: logger,
	}
}

// aiPayload is the strict JSON contract the model is instructed to emit.
type aiPayload struct {
	Greeting   string `json:"greeting"`
	Insight    string `json:"insight"`
	GoldenHour struct {
		Start   string `json:"start"`
		End     string `json:"end"`
		Quality string `json:"quality"`
	} `json:"goldenHour"`
	DSLR   aiGear `json:"dslr"`
	Mobile aiGear `json:"mobile"`
}

type aiGear struct {
	ISO             string   `json:"iso"`
	ShutterSpeed    string   `json:"shutterSpeed"`
	Aperture        string   `json:"aperture"`
	WhiteBalance    string   `json:"whiteBalance"`
	CompositionTips []string `json:"compositionTips"`
}

// Generate returns the photography insight for a scored forecast. The
// external call, when configured, is attempted once; malformed output,
// transport errors, and timeouts all degrade silently to the rule-based
// payload.
func (g *Generator) Generate(ctx context.Context, beach types.Beach, forecast types.HourlyForecast, score int) types.Insight {
	fallback := g.rules.Generate(beach, forecast, score)
	if g.ai == nil {
		return fallback
	}

	raw, err := g.ai.GenerateInsight(ctx, buildPrompt(beach, forecast))
	if err != nil {
		g.logger.WarnContext(ctx, "insight generation failed, using rule-based fallback",
			"beach", beach.Key,
			"error", err,
		)
		return fallback
	}

	insight, err := parseAIResponse(raw)
	if err != nil {
		g.logger.WarnContext(ctx, "insight response unparseable, using rule-based fallback",
			"beach", beach.Key,
			"error", err,
		)
		return fallback
	}

	return insight
}

// buildPrompt renders the instruction sent to the model. The response must
// be bare JSON matching aiPayload; anything else is rejected by the parser.
func buildPrompt(beach types.Beach, forecast types.HourlyForecast) string {
	return fmt.Sprintf(`You are a professional sunrise photography expert. Generate recommendations for %s tomorrow at 6 AM.

Weather: %.0f°C, %d%% clouds, %.0fkm visibility, %.0fkm/h wind, %s.

Respond ONLY with valid JSON (no markdown):
{
  "greeting": "One enthusiastic sentence",
  "insight": "Two sentences about photographic potential",
  "goldenHour": {"start": "5:45 AM", "end": "7:00 AM", "quality": "Excellent/Good/Fair/Poor"},
  "dslr": {"iso": "100-400", "shutterSpeed": "1/125-1/250", "aperture": "f/8-f/11", "whiteBalance": "5500-6000K", "compositionTips": ["tip1", "tip2", "tip3"]},
  "mobile": {"iso": "200-800", "shutterSpeed": "1/120-1/500", "aperture": "f/1.8", "whiteBalance": "Auto", "compositionTips": ["tip1", "tip2", "tip3"]}
}`,
		beach.Name,
		forecast.Temperature,
		forecast.CloudCover,
		forecast.Visibility,
		forecast.WindSpeed,
		forecast.WeatherDescription,
	)
}

// parseAIResponse strips markdown code fences the model sometimes adds,
// strict-parses the JSON, and validates the fields the email and API
// payloads depend on. Tip lists are truncated to the cap.
func parseAIResponse(raw string) (types.Insight, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return types.Insight{}, fmt.Errorf("empty model response")
	}

	var payload aiPayload
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&payload); err != nil {
		return types.Insight{}, fmt.Errorf("decoding model response: %w", err)
	}

	if payload.Greeting == "" || payload.Insight == "" {
		return types.Insight{}, fmt.Errorf("model response missing required fields")
	}

	return types.Insight{
		Source:   types.InsightSourceAI,
		Greeting: payload.Greeting,
		Insight:  payload.Insight,
		GoldenHour: types.GoldenHour{
			Start:   payload.GoldenHour.Start,
			End:     payload.GoldenHour.End,
			Quality: payload.GoldenHour.Quality,
		},
		DSLR:   gearGuideOf(payload.DSLR),
		Mobile: gearGuideOf(payload.Mobile),
	}, nil
}

func gearGuideOf(g aiGear) types.GearGuide {
	tips := g.CompositionTips
	if len(tips) > maxCompositionTips {
		tips = tips[:maxCompositionTips]
	}
	return types.GearGuide{
		Settings: types.CameraSettings{
			ISO:          g.ISO,
			ShutterSpeed: g.ShutterSpeed,
			Aperture:     g.Aperture,
			WhiteBalance: g.WhiteBalance,
		},
		CompositionTips: tips,
	}
}
