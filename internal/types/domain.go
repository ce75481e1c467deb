package types

import "time"

// Coordinates is a WGS84 lat/lon pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Beach is a statically configured beach the service predicts for.
// The registry is immutable and defined at process start; an unknown key is
// an error, never a silent default.
type Beach struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	LocationKey string      `json:"-"` // upstream provider location identifier
	Coordinates Coordinates `json:"coordinates"`
}

// HourlyForecast is a single hourly data point from the upstream weather
// provider. Read-only once received. The provider returns an ordered,
// non-empty series covering roughly the next 12 hours; there is no guarantee
// of an entry exactly at any given instant.
type HourlyForecast struct {
	Timestamp          time.Time // UTC
	Temperature        float64   // Celsius
	FeelsLike          float64   // Celsius
	CloudCover         int       // percent [0,100]
	Humidity           int       // percent [0,100]
	WindSpeed          float64   // km/h
	WindDirection      string
	Visibility         float64 // km
	UVIndex            int
	PrecipProbability  int // percent [0,100]
	HasPrecipitation   bool
	WeatherDescription string
}

// Verdict is the discrete photography-suitability label derived from the
// numeric visibility score.
type Verdict string

const (
	VerdictExcellent Verdict = "EXCELLENT"
	VerdictGood      Verdict = "GOOD"
	VerdictFair      Verdict = "FAIR"
	VerdictPoor      Verdict = "POOR"
	VerdictVeryPoor  Verdict = "VERY POOR"
)

// Factors are categorical labels for the individual forecast fields feeding
// the score. Each is a pure function of one field, independent of the score.
type Factors struct {
	CloudCover    string `json:"cloudCover"`
	Visibility    string `json:"visibility"`
	Precipitation string `json:"precipitation"`
	Wind          string `json:"wind"`
}

// Prediction is the scored outcome for one forecast record.
type Prediction struct {
	Score   int     `json:"score"`
	Verdict Verdict `json:"verdict"`
	Factors Factors `json:"factors"`
}

// ForecastView is the client-facing projection of an HourlyForecast, with
// rounded figures and the forecast instant formatted in the local civil
// timezone.
type ForecastView struct {
	Temperature        int     `json:"temperature"`
	FeelsLike          int     `json:"feelsLike"`
	CloudCover         int     `json:"cloudCover"`
	Humidity           int     `json:"humidity"`
	WindSpeed          int     `json:"windSpeed"`
	WindDirection      string  `json:"windDirection"`
	Visibility         float64 `json:"visibility"`
	UVIndex            int     `json:"uvIndex"`
	PrecipProbability  int     `json:"precipProbability"`
	WeatherDescription string  `json:"weatherDescription"`
	HasPrecipitation   bool    `json:"hasPrecipitation"`
	ForecastTime       string  `json:"forecastTime"`
}

// Wait is the remaining time until predictions open, in whole hours and
// minutes.
type Wait struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// PredictionResult is the full payload returned by the prediction pipeline.
// When predictions are gated closed, Available is false and only the wait
// fields are populated; this is an expected state, not an error.
type PredictionResult struct {
	Available          bool            `json:"available"`
	Beach              string          `json:"beach"`
	BeachKey           string          `json:"beachKey"`
	Coordinates        *Coordinates    `json:"coordinates,omitempty"`
	TimeUntilAvailable *Wait           `json:"timeUntilAvailable,omitempty"`
	Message            string          `json:"message,omitempty"`
	Forecast           *ForecastView   `json:"forecast,omitempty"`
	Prediction         *Prediction     `json:"prediction,omitempty"`
	Source             string          `json:"source,omitempty"`
	Raw                *HourlyForecast `json:"-"` // selected record, for downstream insight generation
}

// InsightSource identifies which generator produced an Insight.
type InsightSource string

const (
	InsightSourceAI    InsightSource = "ai"
	InsightSourceRules InsightSource = "rules"
)

// GoldenHour is the soft-light window around sunrise. Clock strings are
// local civil time; the range is fixed rather than computed astronomically.
type GoldenHour struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Quality string `json:"quality"`
}

// CameraSettings are exposure recommendations for one equipment class.
type CameraSettings struct {
	ISO          string `json:"iso"`
	ShutterSpeed string `json:"shutterSpeed"`
	Aperture     string `json:"aperture"`
	WhiteBalance string `json:"whiteBalance"`
}

// GearGuide pairs settings with at most three composition tips for a single
// equipment class (DSLR or phone).
type GearGuide struct {
	Settings        CameraSettings `json:"settings"`
	CompositionTips []string       `json:"compositionTips"`
}

// Insight is the photography recommendation payload. The rule-based variant
// is deterministic and total; the AI variant is externally generated with
// the rule-based output as its silent fallback.
type Insight struct {
	Source     InsightSource `json:"source"`
	Greeting   string        `json:"greeting"`
	Insight    string        `json:"insight"`
	GoldenHour GoldenHour    `json:"goldenHour"`
	DSLR       GearGuide     `json:"dslr"`
	Mobile     GearGuide     `json:"mobile"`
}

// Subscriber is a registered recipient of the daily prediction email.
// Email is the unique key, matched case-insensitively.
type Subscriber struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PreferredBeach string    `json:"preferredBeach"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SendInput describes one outbound email for an EmailProvider.
type SendInput struct {
	ToAddress string
	ToName    string
	Subject   string
	BodyHTML  string
	BodyText  string
}
