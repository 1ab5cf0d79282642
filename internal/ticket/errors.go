package ticket

import "errors"

// Domain-specific errors for the ticket package.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrEmptySecret      = errors.New("handshake secret is empty")
)
