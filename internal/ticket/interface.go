package ticket

import "context"

// UseCase defines the business logic of the ticket-numbering webhook.
type UseCase interface {
	// Handshake stores the secret offered during webhook activation,
	// replacing any previous secret of the subscription.
	Handshake(ctx context.Context, input HandshakeInput) error

	// Authenticate checks a delivery body against the subscription's stored
	// secret. Returns ErrInvalidSignature when it does not match or no secret
	// is stored.
	Authenticate(ctx context.Context, input AuthenticateInput) error

	// ProcessEvents numbers every task whose name changed and is not yet
	// numbered. Per-event failures are reported in the output, never as an error.
	ProcessEvents(ctx context.Context, input ProcessEventsInput) ProcessEventsOutput
}
