// Package handlers contains the HTTP handler implementations for the Seaside
// Beacon API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"seasidebeacon/internal/beaches"
	"seasidebeacon/internal/core"
	"seasidebeacon/internal/types"
)

// PredictionService defines the prediction contract for the handler. Matches
// the prediction package's Service interface but is defined locally to avoid
// tight coupling.
type PredictionService interface {
	GetPrediction(ctx context.Context, beachKey string, now time.Time) (*types.PredictionResult, error)
	Beaches() []types.Beach
}

// InsightService defines the photography insight contract for the handler.
type InsightService interface {
	Generate(ctx context.Context, beach types.Beach, forecast types.HourlyForecast, score int) types.Insight
}

// PredictionHandler maps HTTP requests to the prediction and insight
// services.
type PredictionHandler struct {
	predictions PredictionService
	insights    InsightService
	clock       types.Clock
	logger      *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler with the provided
// dependencies. A nil clock defaults to wall time.
func NewPredictionHandler(
	predictions PredictionService,
	insights InsightService,
	clock types.Clock,
	logger *slog.Logger,
) *PredictionHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionHandler{
		predictions: predictions,
		insights:    insights,
		clock:       clock,
		logger:      logger,
	}
}

// RegisterRoutes mounts the prediction endpoints onto the mux.
func (h *PredictionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/beaches", h.HandleListBeaches)
	r.Get("/predict/{beach}", h.HandleGetPrediction)
}

// predictResponse combines the weather prediction with the photography
// insight. Photography is null whenever the prediction window is closed.
type predictResponse struct {
	Weather     *types.PredictionResult `json:"weather"`
	Photography *types.Insight          `json:"photography"`
}

// HandleListBeaches handles GET /v1/beaches. It returns the static beach
// registry in declaration order.
func (h *PredictionHandler) HandleListBeaches(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.predictions.Beaches()})
}

// HandleGetPrediction handles GET /v1/predict/{beach}.
//
// Flow:
//  1. Resolve the beach key from the URL (404 on unknown).
//  2. Fetch the scored prediction from the prediction service.
//  3. If the prediction window is open, generate a photography insight for
//     the selected forecast record. Insight generation never fails; at worst
//     it degrades to the rule-based fallback.
//
// A gated (outside the evening window) prediction is a normal 200 response
// with available:false and a null photography payload.
func (h *PredictionHandler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	beachKey := chi.URLParam(r, "beach")

	beach, err := beaches.Lookup(beachKey)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.predictions.GetPrediction(r.Context(), beach.Key, h.clock.Now())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := predictResponse{Weather: result}

	if result.Available && result.Raw != nil && result.Prediction != nil {
		insight := h.insights.Generate(r.Context(), beach, *result.Raw, result.Prediction.Score)
		resp.Photography = &insight
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}
