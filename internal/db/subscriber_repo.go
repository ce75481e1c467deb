package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"seasidebeacon/internal/types"
)

// SubscriberRepository provides data access for the subscribers table.
//
// Key invariants:
//   - Email addresses are normalized to lowercase before every query, so a
//     subscriber can never appear twice under case variants.
//   - Subscribe is create-or-reactivate: an inactive subscriber who signs up
//     again is reactivated in place rather than duplicated.
type SubscriberRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewSubscriberRepository creates a new SubscriberRepository backed by the
// given database connection (pool or transaction).
func NewSubscriberRepository(db DBTX, logger *slog.Logger) *SubscriberRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriberRepository{db: db, logger: logger}
}

// subscriberColumns defines the standard set of columns selected for
// subscriber queries. Used consistently across all query methods to avoid
// column drift.
const subscriberColumns = `s.id, s.email, s.preferred_beach, s.is_active, s.created_at, s.updated_at`

// scanSubscriber scans a single subscriber row into a types.Subscriber.
// The columns must match the order defined in subscriberColumns.
func scanSubscriber(row pgx.Row) (*types.Subscriber, error) {
	var s types.Subscriber
	err := row.Scan(
		&s.ID,
		&s.Email,
		&s.PreferredBeach,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Subscribe registers an email for daily sunrise digests.
//
// Behavior:
//   - No existing row: a new subscriber is created.
//   - Existing inactive row: the subscriber is reactivated and the preferred
//     beach is updated to the new choice.
//   - Existing active row: returns ErrCodeConflictSubscribed.
func (r *SubscriberRepository) Subscribe(ctx context.Context, email string, beachKey string) (*types.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := scanSubscriber(r.db.QueryRow(ctx,
		`SELECT `+subscriberColumns+`
		 FROM subscribers s
		 WHERE s.email = $1`,
		email,
	))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up subscriber", err)
	}

	if existing == nil {
		sub, err := scanSubscriber(r.db.QueryRow(ctx,
			`INSERT INTO subscribers (id, email, preferred_beach, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, TRUE, NOW(), NOW())
			 RETURNING id, email, preferred_beach, is_active, created_at, updated_at`,
			uuid.New().String(),
			email,
			beachKey,
		))
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to create subscriber", err)
		}
		r.logger.InfoContext(ctx, "subscriber created",
			slog.String("subscriber_id", sub.ID),
			slog.String("beach", beachKey),
		)
		return sub, nil
	}

	if existing.IsActive {
		return nil, types.NewAppError(
			types.ErrCodeConflictSubscribed,
			"email is already subscribed",
			nil,
		)
	}

	sub, err := scanSubscriber(r.db.QueryRow(ctx,
		`UPDATE subscribers
		 SET is_active = TRUE,
		     preferred_beach = $1,
		     updated_at = NOW()
		 WHERE email = $2
		 RETURNING id, email, preferred_beach, is_active, created_at, updated_at`,
		beachKey,
		email,
	))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to reactivate subscriber", err)
	}

	r.logger.InfoContext(ctx, "subscriber reactivated",
		slog.String("subscriber_id", sub.ID),
		slog.String("beach", beachKey),
	)
	return sub, nil
}

// Unsubscribe deactivates a subscriber by email. Returns
// ErrCodeNotFoundSubscriber if the email has no active subscription.
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	tag, err := r.db.Exec(ctx,
		`UPDATE subscribers
		 SET is_active = FALSE,
		     updated_at = NOW()
		 WHERE email = $1
		   AND is_active = TRUE`,
		email,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to unsubscribe", err)
	}

	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundSubscriber, "no active subscription for email", nil)
	}

	return nil
}

// ListActive returns all active subscribers ordered by creation time. Used
// by the digest dispatcher to fan out the morning send.
func (r *SubscriberRepository) ListActive(ctx context.Context) ([]types.Subscriber, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subscriberColumns+`
		 FROM subscribers s
		 WHERE s.is_active = TRUE
		 ORDER BY s.created_at`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list subscribers", err)
	}
	defer rows.Close()

	var subs []types.Subscriber
	for rows.Next() {
		var s types.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.PreferredBeach, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan subscriber row", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate subscriber rows", err)
	}

	return subs, nil
}
