package http

import (
	"github.com/gin-gonic/gin"

	"asana-ticket-numbering/internal/ticket"
	"asana-ticket-numbering/internal/webhook"
	"asana-ticket-numbering/pkg/log"
)

// Handler is the public interface of the webhook delivery layer.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// Config holds the transport limits of the webhook endpoint.
type Config struct {
	MaxBodySize int64 // bytes, 0 disables the limit
}

type handler struct {
	l           log.Logger
	uc          ticket.UseCase
	security    *webhook.SecurityValidator
	maxBodySize int64
}

// New creates a new HTTP handler for the ticket webhook.
func New(l log.Logger, uc ticket.UseCase, security *webhook.SecurityValidator, cfg Config) Handler {
	if security == nil {
		security = webhook.NewSecurityValidator(webhook.SecurityConfig{})
	}
	return &handler{
		l:           l,
		uc:          uc,
		security:    security,
		maxBodySize: cfg.MaxBodySize,
	}
}
