// Package scheduler implements the daily digest dispatch loop. Every morning
// at the configured IST hour it scores each beach once, generates a
// photography insight, and fans the rendered email out to all active
// subscribers.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"seasidebeacon/internal/beaches"
	"seasidebeacon/internal/prediction"
	"seasidebeacon/internal/types"
)

// DefaultSendHourIST is the IST hour at which digests go out. The prediction
// gate is still open at 4 AM, so every beach scores against the coming 6 AM
// sunrise.
const DefaultSendHourIST = 4

// DefaultConcurrency bounds the per-subscriber send fan-out.
const DefaultConcurrency = 8

// DefaultPollEvery is how often the loop checks whether a send is due.
const DefaultPollEvery = time.Minute

// SubscriberStore lists the recipients for a dispatch cycle.
type SubscriberStore interface {
	ListActive(ctx context.Context) ([]types.Subscriber, error)
}

// PredictionProvider scores one beach for the given instant.
type PredictionProvider interface {
	GetPrediction(ctx context.Context, beachKey string, now time.Time) (*types.PredictionResult, error)
}

// InsightProvider produces the photography recommendation for a scored
// forecast. Implementations never fail; the rule-based fallback is total.
type InsightProvider interface {
	Generate(ctx context.Context, beach types.Beach, forecast types.HourlyForecast, score int) types.Insight
}

// Mailer delivers one digest email to one subscriber.
type Mailer interface {
	SendDaily(ctx context.Context, sub types.Subscriber, result *types.PredictionResult, insight *types.Insight) error
}

// Config tunes the dispatch loop.
type Config struct {
	SendHourIST int
	Concurrency int
	PollEvery   time.Duration
}

// beachDigest pairs the per-beach prediction with its insight, computed once
// per cycle regardless of subscriber count.
type beachDigest struct {
	result  *types.PredictionResult
	insight *types.Insight
}

// DigestDispatcher runs the daily send. One prediction and one insight are
// computed per beach per cycle; per-subscriber delivery failures are logged
// and skipped, never fatal.
type DigestDispatcher struct {
	subs        SubscriberStore
	predictions PredictionProvider
	insights    InsightProvider
	mailer      Mailer
	clock       clockwork.Clock
	cfg         Config
	logger      *slog.Logger

	lastSentDay string // IST date of the last completed dispatch
}

// NewDigestDispatcher creates a dispatcher. A nil clock falls back to the
// real clock; tests inject a fake for deterministic runs.
func NewDigestDispatcher(
	subs SubscriberStore,
	predictions PredictionProvider,
	insights InsightProvider,
	mailer Mailer,
	clock clockwork.Clock,
	cfg Config,
	logger *slog.Logger,
) *DigestDispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendHourIST == 0 {
		cfg.SendHourIST = DefaultSendHourIST
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = DefaultPollEvery
	}
	return &DigestDispatcher{
		subs:        subs,
		predictions: predictions,
		insights:    insights,
		mailer:      mailer,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled, dispatching once per IST day when the
// clock enters the send hour.
func (d *DigestDispatcher) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "digest dispatcher started",
		"send_hour_ist", d.cfg.SendHourIST,
		"poll_every", d.cfg.PollEvery.String(),
	)

	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "digest dispatcher stopping")
			return ctx.Err()
		case <-d.clock.After(d.cfg.PollEvery):
		}

		now := d.clock.Now()
		ist := now.In(prediction.IST)
		day := ist.Format(time.DateOnly)

		if ist.Hour() != d.cfg.SendHourIST || day == d.lastSentDay {
			continue
		}

		if err := d.Dispatch(ctx, now); err != nil {
			// Leave lastSentDay unset so the next poll within the send hour
			// retries the cycle.
			d.logger.ErrorContext(ctx, "digest dispatch failed", "error", err)
			continue
		}
		d.lastSentDay = day
	}
}

// Dispatch runs one full send cycle at the given instant. Exported so the
// worker can be invoked one-shot and so tests can drive it directly.
func (d *DigestDispatcher) Dispatch(ctx context.Context, now time.Time) error {
	subs, err := d.subs.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		d.logger.InfoContext(ctx, "no active subscribers, skipping dispatch")
		return nil
	}

	digests := d.collectDigests(ctx, subs, now)
	if len(digests) == 0 {
		d.logger.WarnContext(ctx, "no beach produced a digest, nothing to send")
		return nil
	}

	var sent, skipped, failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)

	results := make(chan bool, len(subs))
	for _, sub := range subs {
		sub := sub
		digest, ok := digests[sub.PreferredBeach]
		if !ok {
			skipped++
			continue
		}
		g.Go(func() error {
			if err := d.mailer.SendDaily(gctx, sub, digest.result, digest.insight); err != nil {
				d.logger.ErrorContext(gctx, "digest send failed",
					"subscriber_id", sub.ID,
					"beach", sub.PreferredBeach,
					"error", err,
				)
				results <- false
				return nil
			}
			results <- true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	close(results)
	for ok := range results {
		if ok {
			sent++
		} else {
			failed++
		}
	}

	d.logger.InfoContext(ctx, "digest dispatch complete",
		"subscribers", len(subs),
		"sent", sent,
		"failed", failed,
		"skipped", skipped,
	)
	return nil
}

// collectDigests computes one prediction and insight per beach that has at
// least one subscriber. Gated or failed beaches are dropped from the cycle.
func (d *DigestDispatcher) collectDigests(ctx context.Context, subs []types.Subscriber, now time.Time) map[string]beachDigest {
	wanted := make(map[string]struct{})
	for _, sub := range subs {
		wanted[sub.PreferredBeach] = struct{}{}
	}

	digests := make(map[string]beachDigest, len(wanted))
	for key := range wanted {
		beach, err := beaches.Lookup(key)
		if err != nil {
			d.logger.ErrorContext(ctx, "subscriber references unknown beach", "beach", key)
			continue
		}

		result, err := d.predictions.GetPrediction(ctx, key, now)
		if err != nil {
			d.logger.ErrorContext(ctx, "prediction failed for beach", "beach", key, "error", err)
			continue
		}
		if !result.Available || result.Raw == nil || result.Prediction == nil {
			d.logger.WarnContext(ctx, "predictions gated at dispatch time, skipping beach", "beach", key)
			continue
		}

		insight := d.insights.Generate(ctx, beach, *result.Raw, result.Prediction.Score)
		digests[key] = beachDigest{result: result, insight: &insight}
	}
	return digests
}
