package usecase

import (
	"context"
	"fmt"

	"asana-ticket-numbering/internal/ticket"
)

// Handshake stores the secret Asana offers when a webhook is created.
// Re-handshakes overwrite unconditionally.
func (uc *implUseCase) Handshake(ctx context.Context, input ticket.HandshakeInput) error {
	if err := input.Subscription.Validate(); err != nil {
		return err
	}
	if input.Secret == "" {
		return ticket.ErrEmptySecret
	}

	callCtx, cancel := uc.callContext(ctx)
	defer cancel()

	if err := uc.subRepo.SaveSecret(callCtx, input.Subscription, input.Secret); err != nil {
		uc.l.Errorf(ctx, "ticket.usecase.Handshake: failed to store secret for %s: %v", input.Subscription.Prefix, err)
		return fmt.Errorf("store handshake secret: %w", err)
	}

	uc.l.Infof(ctx, "ticket.usecase.Handshake: webhook secret stored for prefix %s", input.Subscription.Prefix)
	return nil
}
