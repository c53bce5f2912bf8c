package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fall-line/lifelens/internal/domain"
)

// Limits holds the per-chat request guards: a sliding one-minute message
// counter and the single in-flight request lock.
type Limits struct {
	pool *pgxpool.Pool
}

func NewLimits(pool *pgxpool.Pool) *Limits {
	return &Limits{pool: pool}
}

// IncrementRateLimit bumps and returns the message count for the current
// one-minute window.
func (r *Limits) IncrementRateLimit(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rate_limits (chat_id, window_start)
		VALUES ($1, date_trunc('minute', now()))
		ON CONFLICT (chat_id, window_start)
		DO UPDATE SET count = rate_limits.count + 1
		RETURNING count`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment rate limit: %w", err)
	}
	return count, nil
}

// TrySetActiveRequest claims the in-flight slot for the chat. Returns
// domain.ErrActiveRequest if another request already holds it.
func (r *Limits) TrySetActiveRequest(ctx context.Context, chatID int64) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO active_requests (chat_id) VALUES ($1)
		ON CONFLICT (chat_id) DO NOTHING`, chatID)
	if err != nil {
		return fmt.Errorf("set active request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActiveRequest
	}
	return nil
}

// RemoveActiveRequest releases the in-flight slot.
func (r *Limits) RemoveActiveRequest(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM active_requests WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("remove active request: %w", err)
	}
	return nil
}

// CleanupStaleRequests drops locks left behind by crashed handlers.
func (r *Limits) CleanupStaleRequests(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM active_requests WHERE started_at < now() - make_interval(secs => $1)`,
		maxAge.Seconds())
	if err != nil {
		return 0, fmt.Errorf("cleanup stale requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
