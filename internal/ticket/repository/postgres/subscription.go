package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket/repository"
	pkgLog "asana-ticket-numbering/pkg/log"
)

type implRepository struct {
	pool *pgxpool.Pool
	l    pkgLog.Logger
}

// New creates a PostgreSQL-backed subscription repository.
func New(pool *pgxpool.Pool, l pkgLog.Logger) repository.SubscriptionRepository {
	return &implRepository{
		pool: pool,
		l:    l,
	}
}

func (r *implRepository) GetSecret(ctx context.Context, sub model.Subscription) (string, error) {
	var secret string
	err := r.pool.QueryRow(ctx,
		`SELECT secret FROM subscription_secrets WHERE prefix = $1`,
		sub.Prefix).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get secret for %s: %w", sub.Prefix, err)
	}
	return secret, nil
}

func (r *implRepository) SaveSecret(ctx context.Context, sub model.Subscription, secret string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscription_secrets (prefix, secret, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (prefix) DO UPDATE SET secret = EXCLUDED.secret, updated_at = NOW()`,
		sub.Prefix, secret)
	if err != nil {
		r.l.Errorf(ctx, "postgres repository: failed to save secret for %s: %v", sub.Prefix, err)
		return fmt.Errorf("save secret for %s: %w", sub.Prefix, err)
	}
	return nil
}

// NextSequence is a single upsert; the row lock taken by ON CONFLICT
// serialises concurrent increments of the same key.
func (r *implRepository) NextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sequence_counters (counter_key, value, updated_at)
		 VALUES ($1, 1, NOW())
		 ON CONFLICT (counter_key) DO UPDATE SET value = sequence_counters.value + 1, updated_at = NOW()
		 RETURNING value`,
		sub.CounterKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", sub.CounterKey, err)
	}
	return n, nil
}
