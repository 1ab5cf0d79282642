package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"asana-ticket-numbering/internal/model"
)

var errBodyTooLarge = errors.New("request body too large")

type webhookQuery struct {
	CounterKey string `form:"counter_key"`
	Prefix     string `form:"prefix"`
}

func (q webhookQuery) toSubscription() model.Subscription {
	return model.Subscription{Prefix: q.Prefix, CounterKey: q.CounterKey}
}

// Handshakes and deliveries of a prefix are limited independently.
func handshakeLimitKey(sub model.Subscription) string { return "handshake:" + sub.Prefix }
func deliveryLimitKey(sub model.Subscription) string { return "delivery:" + sub.Prefix }

// processSubscription reads and validates the subscription query parameters.
func (h *handler) processSubscription(c *gin.Context) (model.Subscription, error) {
	var q webhookQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return model.Subscription{}, err
	}
	sub := q.toSubscription()
	return sub, sub.Validate()
}

// readBody returns the exact raw body; the signature is computed over it.
func (h *handler) readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body := c.Request.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodySize)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	return data, nil
}
