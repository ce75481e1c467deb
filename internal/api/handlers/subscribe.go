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

// welcomeEmailTimeout bounds the background welcome email send so a slow
// provider cannot hold a goroutine forever.
const welcomeEmailTimeout = 30 * time.Second

// SubscriberStore defines the persistence contract for the subscription
// handler.
type SubscriberStore interface {
	Subscribe(ctx context.Context, email, beachKey string) (*types.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

// WelcomeMailer sends the one-time welcome email after a successful signup.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, toEmail, beachName string) error
}

// SubscribeHandler maps HTTP requests to the subscriber store.
type SubscribeHandler struct {
	store     SubscriberStore
	mailer    WelcomeMailer
	validator *core.Validator
	logger    *slog.Logger
}

// NewSubscribeHandler creates a new SubscribeHandler. The mailer may be nil
// when email delivery is disabled; signups then proceed without a welcome
// message.
func NewSubscribeHandler(
	store SubscriberStore,
	mailer WelcomeMailer,
	validator *core.Validator,
	logger *slog.Logger,
) *SubscribeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscribeHandler{
		store:     store,
		mailer:    mailer,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the subscription endpoints onto the mux.
func (h *SubscribeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/subscribe", h.HandleSubscribe)
	r.Post("/unsubscribe", h.HandleUnsubscribe)
}

type subscribeRequest struct {
	Email          string `json:"email" validate:"required,email"`
	PreferredBeach string `json:"preferred_beach" validate:"required,beach_key"`
}

type unsubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type subscribeResponse struct {
	Message    string            `json:"message"`
	Subscriber *types.Subscriber `json:"subscriber"`
}

// HandleSubscribe handles POST /v1/subscribe.
//
// Flow:
//  1. Decode and validate the request body (email format, known beach).
//  2. Create or reactivate the subscriber.
//  3. Dispatch the welcome email in the background. Delivery failures are
//     logged and never fail the signup.
func (h *SubscribeHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	sub, err := h.store.Subscribe(r.Context(), req.Email, req.PreferredBeach)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.sendWelcome(r.Context(), sub)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: subscribeResponse{
		Message:    "subscribed to daily sunrise predictions",
		Subscriber: sub,
	}})
}

// sendWelcome dispatches the welcome email without blocking the response.
// The request context is not reused because it is cancelled as soon as the
// handler returns.
func (h *SubscribeHandler) sendWelcome(reqCtx context.Context, sub *types.Subscriber) {
	if h.mailer == nil {
		return
	}

	beach, err := beaches.Lookup(sub.PreferredBeach)
	if err != nil {
		h.logger.ErrorContext(reqCtx, "subscriber has unknown preferred beach",
			"email", sub.Email, "beach", sub.PreferredBeach)
		return
	}

	requestID := types.GetRequestID(reqCtx)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
		defer cancel()
		ctx = types.WithRequestID(ctx, requestID)

		if err := h.mailer.SendWelcome(ctx, sub.Email, beach.Name); err != nil {
			h.logger.ErrorContext(ctx, "welcome email delivery failed",
				"email", sub.Email, "error", err)
		}
	}()
}

// HandleUnsubscribe handles POST /v1/unsubscribe. Unsubscribing is a soft
// deactivation; the row is kept so a later signup reactivates it.
func (h *SubscribeHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.store.Unsubscribe(r.Context(), req.Email); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "unsubscribed from daily sunrise predictions",
	}})
}
