package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket/repository"
	pkgLog "asana-ticket-numbering/pkg/log"
)

type implRepository struct {
	db *sql.DB
	l  pkgLog.Logger
}

// New creates a SQLite-backed subscription repository.
func New(db *sql.DB, l pkgLog.Logger) repository.SubscriptionRepository {
	return &implRepository{
		db: db,
		l:  l,
	}
}

func (r *implRepository) GetSecret(ctx context.Context, sub model.Subscription) (string, error) {
	var secret string
	err := r.db.QueryRowContext(ctx,
		`SELECT secret FROM subscription_secrets WHERE prefix = ?`,
		sub.Prefix).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get secret for %s: %w", sub.Prefix, err)
	}
	return secret, nil
}

func (r *implRepository) SaveSecret(ctx context.Context, sub model.Subscription, secret string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscription_secrets (prefix, secret, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (prefix) DO UPDATE SET secret = excluded.secret, updated_at = excluded.updated_at`,
		sub.Prefix, secret, now())
	if err != nil {
		r.l.Errorf(ctx, "sqlite repository: failed to save secret for %s: %v", sub.Prefix, err)
		return fmt.Errorf("save secret for %s: %w", sub.Prefix, err)
	}
	return nil
}

func (r *implRepository) NextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sequence_counters (counter_key, value, updated_at)
		 VALUES (?, 1, ?)
		 ON CONFLICT (counter_key) DO UPDATE SET value = value + 1, updated_at = excluded.updated_at
		 RETURNING value`,
		sub.CounterKey, now()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", sub.CounterKey, err)
	}
	return n, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
