// Package email renders and delivers the service's transactional email:
// the welcome message sent on subscription and the daily sunrise digest.
// Templates are compiled into the binary and parsed once at startup, so a
// broken template fails the process immediately rather than at send time.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"seasidebeacon/internal/types"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// RenderedEmail holds the pre-rendered email content ready for transmission.
type RenderedEmail struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// welcomeData is the struct passed into the welcome templates.
type welcomeData struct {
	BeachName string
}

// dailyData is the struct passed into the daily digest templates.
type dailyData struct {
	BeachName       string
	StatusColor     template.CSS
	Score           int
	Verdict         string
	Temperature     int
	CloudCover      int
	Humidity        int
	WindSpeed       int
	Greeting        string
	Insight         string
	Settings        types.CameraSettings
	CompositionTips []string
	GoldenHour      types.GoldenHour
}

// dailyTextData mirrors dailyData without the HTML-only color field.
type dailyTextData struct {
	BeachName       string
	Score           int
	Verdict         string
	Temperature     int
	CloudCover      int
	Humidity        int
	WindSpeed       int
	Greeting        string
	Insight         string
	Settings        types.CameraSettings
	CompositionTips []string
	GoldenHour      types.GoldenHour
}

// Renderer performs email template rendering using Go's html/template with
// embedded template files.
type Renderer struct {
	welcomeHTML *template.Template
	welcomeText *texttemplate.Template
	dailyHTML   *template.Template
	dailyText   *texttemplate.Template
}

// NewRenderer parses the embedded templates and returns a Renderer.
// Returns an error if any template fails to parse.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{}

	var err error
	if r.welcomeHTML, err = parseHTML("welcome"); err != nil {
		return nil, err
	}
	if r.welcomeText, err = parseText("welcome"); err != nil {
		return nil, err
	}
	if r.dailyHTML, err = parseHTML("daily"); err != nil {
		return nil, err
	}
	if r.dailyText, err = parseText("daily"); err != nil {
		return nil, err
	}

	return r, nil
}

func parseHTML(name string) (*template.Template, error) {
	content, err := templateFS.ReadFile(fmt.Sprintf("templates/%s.html", name))
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to read %s.html: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to parse %s.html: %w", name, err)
	}
	return tmpl, nil
}

func parseText(name string) (*texttemplate.Template, error) {
	content, err := templateFS.ReadFile(fmt.Sprintf("templates/%s.txt", name))
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to read %s.txt: %w", name, err)
	}
	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to parse %s.txt: %w", name, err)
	}
	return tmpl, nil
}

// RenderWelcome renders the subscription welcome email for a beach.
func (r *Renderer) RenderWelcome(beachName string) (*RenderedEmail, error) {
	data := welcomeData{BeachName: beachName}

	var htmlBuf bytes.Buffer
	if err := r.welcomeHTML.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("renderer: failed to render welcome HTML: %w", err)
	}

	var txtBuf bytes.Buffer
	if err := r.welcomeText.Execute(&txtBuf, data); err != nil {
		return nil, fmt.Errorf("renderer: failed to render welcome text: %w", err)
	}

	return &RenderedEmail{
		Subject:  "🌅 Welcome to Seaside Beacon",
		BodyHTML: htmlBuf.String(),
		BodyText: txtBuf.String(),
	}, nil
}

// RenderDaily renders the morning digest email from a scored prediction and
// its photography insight. The result must carry an available prediction;
// gated results have nothing to render.
func (r *Renderer) RenderDaily(result *types.PredictionResult, insight *types.Insight) (*RenderedEmail, error) {
	if result == nil || result.Prediction == nil || result.Forecast == nil {
		return nil, fmt.Errorf("renderer: daily digest requires an available prediction")
	}
	if insight == nil {
		return nil, fmt.Errorf("renderer: daily digest requires an insight")
	}

	data := dailyData{
		BeachName:       result.Beach,
		StatusColor:     statusColor(result.Prediction.Score),
		Score:           result.Prediction.Score,
		Verdict:         string(result.Prediction.Verdict),
		Temperature:     result.Forecast.Temperature,
		CloudCover:      result.Forecast.CloudCover,
		Humidity:        result.Forecast.Humidity,
		WindSpeed:       result.Forecast.WindSpeed,
		Greeting:        insight.Greeting,
		Insight:         insight.Insight,
		Settings:        insight.DSLR.Settings,
		CompositionTips: insight.DSLR.CompositionTips,
		GoldenHour:      insight.GoldenHour,
	}

	var htmlBuf bytes.Buffer
	if err := r.dailyHTML.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("renderer: failed to render daily HTML: %w", err)
	}

	textData := dailyTextData{
		BeachName:       data.BeachName,
		Score:           data.Score,
		Verdict:         data.Verdict,
		Temperature:     data.Temperature,
		CloudCover:      data.CloudCover,
		Humidity:        data.Humidity,
		WindSpeed:       data.WindSpeed,
		Greeting:        data.Greeting,
		Insight:         data.Insight,
		Settings:        data.Settings,
		CompositionTips: data.CompositionTips,
		GoldenHour:      data.GoldenHour,
	}

	var txtBuf bytes.Buffer
	if err := r.dailyText.Execute(&txtBuf, textData); err != nil {
		return nil, fmt.Errorf("renderer: failed to render daily text: %w", err)
	}

	return &RenderedEmail{
		Subject:  fmt.Sprintf("🌅 Tomorrow's Sunrise: %s at %s", result.Prediction.Verdict, result.Beach),
		BodyHTML: htmlBuf.String(),
		BodyText: txtBuf.String(),
	}, nil
}

// statusColor maps the visibility score to the digest accent color.
func statusColor(score int) template.CSS {
	switch {
	case score >= 65:
		return "#059669"
	case score >= 50:
		return "#D97706"
	default:
		return "#DC2626"
	}
}
