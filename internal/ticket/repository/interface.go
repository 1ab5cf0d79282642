package repository

import (
	"context"

	"asana-ticket-numbering/internal/model"
)

// SubscriptionRepository persists the per-subscription secret and issues
// ticket numbers. Implementations must make NextSequence an atomic
// fetch-and-add on the backing store; callers never read-modify-write.
type SubscriptionRepository interface {
	// GetSecret returns the stored secret or ErrSecretNotFound.
	GetSecret(ctx context.Context, sub model.Subscription) (string, error)
	// SaveSecret stores secret, overwriting any previous value.
	SaveSecret(ctx context.Context, sub model.Subscription, secret string) error
	// NextSequence increments the counter of sub.CounterKey and returns the new value.
	NextSequence(ctx context.Context, sub model.Subscription) (int64, error)
}

// TaskRepository is the narrow view of the upstream task API.
type TaskRepository interface {
	// GetTask returns the task or ErrTaskNotFound.
	GetTask(ctx context.Context, id string) (model.Task, error)
	// RenameTask sets the task's name.
	RenameTask(ctx context.Context, id, name string) error
}
