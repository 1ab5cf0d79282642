package usecase

import (
	"context"
	"fmt"
	"strings"

	"asana-ticket-numbering/internal/model"
)

// callContext bounds one external call.
func (uc *implUseCase) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.callTimeout)
}

// isNumbered reports whether name already carries the subscription marker.
func isNumbered(sub model.Subscription, name string) bool {
	return strings.Contains(name, sub.Marker())
}

// numberedName builds "{prefix}-{n}: {name}".
func numberedName(sub model.Subscription, n int64, name string) string {
	return fmt.Sprintf("%s%d: %s", sub.Marker(), n, name)
}
