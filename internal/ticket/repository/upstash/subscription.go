package upstash

import (
	"context"
	"errors"
	"fmt"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket/repository"
	pkgLog "asana-ticket-numbering/pkg/log"
	pkgUpstash "asana-ticket-numbering/pkg/upstash"
)

type implRepository struct {
	client *pkgUpstash.Client
	l      pkgLog.Logger
}

// New creates a subscription repository on top of Upstash Redis. Secrets
// live under repository.SecretKey and counters under repository.CounterKey;
// increments use Redis INCR.
func New(client *pkgUpstash.Client, l pkgLog.Logger) repository.SubscriptionRepository {
	return &implRepository{
		client: client,
		l:      l,
	}
}

func (r *implRepository) GetSecret(ctx context.Context, sub model.Subscription) (string, error) {
	secret, err := r.client.Get(ctx, repository.SecretKey(sub))
	if errors.Is(err, pkgUpstash.ErrNil) {
		return "", repository.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get secret for %s: %w", sub.Prefix, err)
	}
	if secret == "" {
		return "", repository.ErrSecretNotFound
	}
	return secret, nil
}

func (r *implRepository) SaveSecret(ctx context.Context, sub model.Subscription, secret string) error {
	if err := r.client.Set(ctx, repository.SecretKey(sub), secret); err != nil {
		r.l.Errorf(ctx, "upstash repository: failed to save secret for %s: %v", sub.Prefix, err)
		return fmt.Errorf("save secret for %s: %w", sub.Prefix, err)
	}
	return nil
}

func (r *implRepository) NextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	n, err := r.client.Incr(ctx, repository.CounterKey(sub))
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", sub.CounterKey, err)
	}
	return n, nil
}
