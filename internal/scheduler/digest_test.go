package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seasidebeacon/internal/prediction"
	"seasidebeacon/internal/types"
)

// --- Fakes ---

type fakeSubStore struct {
	subs []types.Subscriber
	err  error
}

func (f *fakeSubStore) ListActive(context.Context) ([]types.Subscriber, error) {
	return f.subs, f.err
}

type fakePredictions struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]*types.PredictionResult
	err     error
}

func (f *fakePredictions) GetPrediction(_ context.Context, beachKey string, _ time.Time) (*types.PredictionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[beachKey]++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[beachKey], nil
}

type fakeInsights struct{}

func (fakeInsights) Generate(_ context.Context, beach types.Beach, _ types.HourlyForecast, score int) types.Insight {
	return types.Insight{
		Source:   types.InsightSourceRules,
		Greeting: "Good morning, " + beach.Name,
	}
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []types.Subscriber
	failFor map[string]bool
}

func (f *fakeMailer) SendDaily(_ context.Context, sub types.Subscriber, _ *types.PredictionResult, _ *types.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[sub.Email] {
		return errors.New("relay refused")
	}
	f.sent = append(f.sent, sub)
	return nil
}

func availableResult(beachKey, beachName string, score int) *types.PredictionResult {
	return &types.PredictionResult{
		Available: true,
		Beach:     beachName,
		BeachKey:  beachKey,
		Forecast:  &types.ForecastView{Temperature: 26},
		Prediction: &types.Prediction{
			Score:   score,
			Verdict: types.VerdictGood,
		},
		Raw: &types.HourlyForecast{CloudCover: 20},
	}
}

func newTestDispatcher(subs *fakeSubStore, preds *fakePredictions, mailer *fakeMailer, clock clockwork.Clock) *DigestDispatcher {
	return NewDigestDispatcher(subs, preds, fakeInsights{}, mailer, clock, Config{
		SendHourIST: 4,
		Concurrency: 2,
		PollEvery:   time.Minute,
	}, nil)
}

// --- Dispatch Tests ---

func TestDispatch_OnePredictionPerBeach(t *testing.T) {
	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "marina"},
		{ID: "s2", Email: "b@example.com", PreferredBeach: "marina"},
		{ID: "s3", Email: "c@example.com", PreferredBeach: "covelong"},
	}}
	preds := &fakePredictions{results: map[string]*types.PredictionResult{
		"marina":   availableResult("marina", "Marina Beach", 75),
		"covelong": availableResult("covelong", "Covelong Beach", 60),
	}}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, preds, mailer, clockwork.NewFakeClock())

	now := time.Date(2026, 1, 14, 22, 30, 0, 0, time.UTC) // 4:00 AM IST
	require.NoError(t, d.Dispatch(context.Background(), now))

	assert.Equal(t, 1, preds.calls["marina"], "marina scored once despite two subscribers")
	assert.Equal(t, 1, preds.calls["covelong"])
	assert.Len(t, mailer.sent, 3)
}

func TestDispatch_PerSubscriberFailureIsNotFatal(t *testing.T) {
	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "marina"},
		{ID: "s2", Email: "bad@example.com", PreferredBeach: "marina"},
		{ID: "s3", Email: "c@example.com", PreferredBeach: "marina"},
	}}
	preds := &fakePredictions{results: map[string]*types.PredictionResult{
		"marina": availableResult("marina", "Marina Beach", 75),
	}}
	mailer := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}

	d := newTestDispatcher(subs, preds, mailer, clockwork.NewFakeClock())

	err := d.Dispatch(context.Background(), time.Date(2026, 1, 14, 22, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 2)
}

func TestDispatch_SkipsGatedBeach(t *testing.T) {
	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "marina"},
	}}
	preds := &fakePredictions{results: map[string]*types.PredictionResult{
		"marina": {
			Available:          false,
			Beach:              "Marina Beach",
			BeachKey:           "marina",
			TimeUntilAvailable: &types.Wait{Hours: 5, Minutes: 12},
		},
	}}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, preds, mailer, clockwork.NewFakeClock())

	err := d.Dispatch(context.Background(), time.Date(2026, 1, 14, 6, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestDispatch_SkipsUnknownBeach(t *testing.T) {
	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "goa"},
		{ID: "s2", Email: "b@example.com", PreferredBeach: "marina"},
	}}
	preds := &fakePredictions{results: map[string]*types.PredictionResult{
		"marina": availableResult("marina", "Marina Beach", 75),
	}}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, preds, mailer, clockwork.NewFakeClock())

	err := d.Dispatch(context.Background(), time.Date(2026, 1, 14, 22, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "marina", mailer.sent[0].PreferredBeach)
	assert.Zero(t, preds.calls["goa"], "unknown beach must never reach the provider")
}

func TestDispatch_NoSubscribers(t *testing.T) {
	subs := &fakeSubStore{}
	preds := &fakePredictions{}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, preds, mailer, clockwork.NewFakeClock())

	require.NoError(t, d.Dispatch(context.Background(), time.Now()))
	assert.Empty(t, mailer.sent)
	assert.Empty(t, preds.calls)
}

func TestDispatch_ListFailurePropagates(t *testing.T) {
	subs := &fakeSubStore{err: errors.New("db down")}
	d := newTestDispatcher(subs, &fakePredictions{}, &fakeMailer{}, clockwork.NewFakeClock())

	err := d.Dispatch(context.Background(), time.Now())
	require.Error(t, err)
}

// --- Run Loop Tests ---

func TestRun_DispatchesOncePerDayAtSendHour(t *testing.T) {
	// 3:59 AM IST on Jan 15 = 22:29 UTC on Jan 14.
	start := time.Date(2026, 1, 14, 22, 29, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "marina"},
	}}
	preds := &fakePredictions{results: map[string]*types.PredictionResult{
		"marina": availableResult("marina", "Marina Beach", 75),
	}}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, preds, mailer, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	// First poll lands at 4:00 AM IST and dispatches.
	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	// Subsequent polls within the same send hour must not dispatch again.
	for i := 0; i < 3; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Minute)
	}

	clock.BlockUntil(1)
	cancel()
	<-done

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Len(t, mailer.sent, 1, "exactly one dispatch within the send hour")
}

func TestRun_OutsideSendHourDoesNothing(t *testing.T) {
	// 11:00 AM IST.
	start := time.Date(2026, 1, 15, 5, 30, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	subs := &fakeSubStore{subs: []types.Subscriber{
		{ID: "s1", Email: "a@example.com", PreferredBeach: "marina"},
	}}
	mailer := &fakeMailer{}

	d := newTestDispatcher(subs, &fakePredictions{}, mailer, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	clock.BlockUntil(1)
	cancel()
	<-done

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Empty(t, mailer.sent)
}

func TestSendHourIsInsideForecastWindow(t *testing.T) {
	// The default send hour must fall inside the prediction gate, or every
	// dispatch would be skipped as gated.
	at := time.Date(2026, 1, 14, 22, 30, 0, 0, time.UTC) // 4:00 AM IST
	assert.True(t, prediction.Available(at))
}
