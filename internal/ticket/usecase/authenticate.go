package usecase

import (
	"context"
	"errors"

	"asana-ticket-numbering/internal/ticket"
	"asana-ticket-numbering/internal/ticket/repository"
	"asana-ticket-numbering/internal/webhook"
)

// Authenticate re-reads the secret on every delivery; nothing is cached.
// A store failure is reported as ErrInvalidSignature too, so an unreadable
// secret never lets a delivery through.
func (uc *implUseCase) Authenticate(ctx context.Context, input ticket.AuthenticateInput) error {
	callCtx, cancel := uc.callContext(ctx)
	defer cancel()

	secret, err := uc.subRepo.GetSecret(callCtx, input.Subscription)
	if err != nil {
		if errors.Is(err, repository.ErrSecretNotFound) {
			uc.l.Warnf(ctx, "ticket.usecase.Authenticate: no secret stored for prefix %s", input.Subscription.Prefix)
		} else {
			uc.l.Errorf(ctx, "ticket.usecase.Authenticate: failed to load secret for %s: %v", input.Subscription.Prefix, err)
		}
		return ticket.ErrInvalidSignature
	}

	if !webhook.Verify(secret, input.Body, input.Signature) {
		uc.l.Warnf(ctx, "ticket.usecase.Authenticate: signature mismatch for prefix %s", input.Subscription.Prefix)
		return ticket.ErrInvalidSignature
	}
	return nil
}
