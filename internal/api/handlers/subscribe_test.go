package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"seasidebeacon/internal/core"
	"seasidebeacon/internal/types"
)

// --- Mocks ---

type mockSubscriberStore struct {
	subscribeResult *types.Subscriber
	subscribeErr    error
	unsubscribeErr  error

	subscribedEmail string
	subscribedBeach string
	unsubEmail      string
}

func (m *mockSubscriberStore) Subscribe(_ context.Context, email, beachKey string) (*types.Subscriber, error) {
	m.subscribedEmail = email
	m.subscribedBeach = beachKey
	return m.subscribeResult, m.subscribeErr
}

func (m *mockSubscriberStore) Unsubscribe(_ context.Context, email string) error {
	m.unsubEmail = email
	return m.unsubscribeErr
}

type mockWelcomeMailer struct {
	mu      sync.Mutex
	sent    []string
	beaches []string
	sendErr error
	done    chan struct{}
}

func newMockWelcomeMailer() *mockWelcomeMailer {
	return &mockWelcomeMailer{done: make(chan struct{}, 1)}
}

func (m *mockWelcomeMailer) SendWelcome(_ context.Context, toEmail, beachName string) error {
	m.mu.Lock()
	m.sent = append(m.sent, toEmail)
	m.beaches = append(m.beaches, beachName)
	m.mu.Unlock()
	select {
	case m.done <- struct{}{}:
	default:
	}
	return m.sendErr
}

func (m *mockWelcomeMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for welcome email send")
	}
}

// --- Helpers ---

func newTestSubscribeHandler(store SubscriberStore, mailer WelcomeMailer) *SubscribeHandler {
	logger := slog.Default()
	return NewSubscribeHandler(store, mailer, core.NewValidator(logger), logger)
}

func makeSubscribeRouter(h *SubscribeHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", h.RegisterRoutes)
	return r
}

func testSubscriber() *types.Subscriber {
	return &types.Subscriber{
		ID:             "6e2f0c2a-6b6e-4d55-9d2b-0f40b1f9a001",
		Email:          "priya@example.com",
		PreferredBeach: "marina",
		IsActive:       true,
		CreatedAt:      time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- HandleSubscribe tests ---

func TestHandleSubscribe_Success(t *testing.T) {
	store := &mockSubscriberStore{subscribeResult: testSubscriber()}
	mailer := newMockWelcomeMailer()
	h := newTestSubscribeHandler(store, mailer)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"priya@example.com","preferred_beach":"marina"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.subscribedEmail != "priya@example.com" {
		t.Errorf("expected store called with email, got %q", store.subscribedEmail)
	}
	if store.subscribedBeach != "marina" {
		t.Errorf("expected store called with beach marina, got %q", store.subscribedBeach)
	}

	var body struct {
		Data subscribeResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.Subscriber == nil || body.Data.Subscriber.Email != "priya@example.com" {
		t.Errorf("expected subscriber in response, got %+v", body.Data.Subscriber)
	}

	mailer.waitForSend(t)
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if len(mailer.sent) != 1 || mailer.sent[0] != "priya@example.com" {
		t.Errorf("expected one welcome email to priya@example.com, got %v", mailer.sent)
	}
	if mailer.beaches[0] != "Marina Beach" {
		t.Errorf("expected welcome email for Marina Beach, got %q", mailer.beaches[0])
	}
}

func TestHandleSubscribe_NilMailer(t *testing.T) {
	store := &mockSubscriberStore{subscribeResult: testSubscriber()}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"priya@example.com","preferred_beach":"marina"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with mail disabled, got %d", rec.Code)
	}
}

func TestHandleSubscribe_InvalidEmail(t *testing.T) {
	store := &mockSubscriberStore{subscribeResult: testSubscriber()}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"not-an-email","preferred_beach":"marina"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if store.subscribedEmail != "" {
		t.Error("expected store not to be called for invalid email")
	}
}

func TestHandleSubscribe_UnknownBeach(t *testing.T) {
	store := &mockSubscriberStore{subscribeResult: testSubscriber()}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"priya@example.com","preferred_beach":"goa"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeValidationInvalidBeach) {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidBeach, errResp.Error.Code)
	}
}

func TestHandleSubscribe_MissingBody(t *testing.T) {
	h := newTestSubscribeHandler(&mockSubscriberStore{}, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty body, got %d", rec.Code)
	}
}

func TestHandleSubscribe_AlreadySubscribed(t *testing.T) {
	store := &mockSubscriberStore{
		subscribeErr: types.NewAppError(types.ErrCodeConflictSubscribed, "already subscribed", nil),
	}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"priya@example.com","preferred_beach":"marina"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestHandleSubscribe_MailFailureDoesNotFailRequest(t *testing.T) {
	store := &mockSubscriberStore{subscribeResult: testSubscriber()}
	mailer := newMockWelcomeMailer()
	mailer.sendErr = types.NewAppError(types.ErrCodeUpstreamEmailProvider, "smtp relay down", nil)
	h := newTestSubscribeHandler(store, mailer)

	rec := postJSON(makeSubscribeRouter(h), "/v1/subscribe",
		`{"email":"priya@example.com","preferred_beach":"marina"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 despite mail failure, got %d", rec.Code)
	}
	mailer.waitForSend(t)
}

// --- HandleUnsubscribe tests ---

func TestHandleUnsubscribe_Success(t *testing.T) {
	store := &mockSubscriberStore{}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/unsubscribe", `{"email":"priya@example.com"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if store.unsubEmail != "priya@example.com" {
		t.Errorf("expected store called with email, got %q", store.unsubEmail)
	}
}

func TestHandleUnsubscribe_NotFound(t *testing.T) {
	store := &mockSubscriberStore{
		unsubscribeErr: types.NewAppError(types.ErrCodeNotFoundSubscriber, "no active subscription", nil),
	}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/unsubscribe", `{"email":"ghost@example.com"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleUnsubscribe_InvalidEmail(t *testing.T) {
	store := &mockSubscriberStore{}
	h := newTestSubscribeHandler(store, nil)

	rec := postJSON(makeSubscribeRouter(h), "/v1/unsubscribe", `{"email":"nope"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if store.unsubEmail != "" {
		t.Error("expected store not to be called for invalid email")
	}
}
