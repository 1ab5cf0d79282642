package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket"
	"asana-ticket-numbering/internal/webhook"
	"asana-ticket-numbering/pkg/response"
)

// HandleWebhook godoc
// @Summary     Asana webhook endpoint
// @Description Completes the webhook handshake (X-Hook-Secret) or verifies and processes a signed event delivery (X-Asana-Request-Signature).
// @Tags        Webhook
// @Accept      json
// @Produce     json
// @Param       counter_key query string true "Name of the ticket sequence"
// @Param       prefix      query string true "Ticket prefix inserted into task names"
// @Success     200 {object} response.Resp "Handshake completed or event processed"
// @Failure     400 {object} response.Resp "Missing parameters, unknown request or invalid payload"
// @Failure     403 {object} response.Resp "Invalid signature"
// @Failure     413 {object} response.Resp "Request body too large"
// @Failure     429 {object} response.Resp "Rate limit exceeded"
// @Failure     500 {object} response.Resp "Secret could not be stored"
// @Router      /webhook [POST]
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.processSubscription(c)
	if err != nil {
		h.l.Warnf(ctx, "ticket.delivery.http.HandleWebhook: %v", err)
		response.Message(c, http.StatusBadRequest, msgMissingParams)
		return
	}

	if err := h.security.ValidateIPAddress(c.Request); err != nil {
		h.l.Warnf(ctx, "ticket.delivery.http.HandleWebhook: %v", err)
		response.Forbidden(c)
		return
	}

	body, err := h.readBody(c)
	if err != nil {
		h.l.Errorf(ctx, "ticket.delivery.http.HandleWebhook: failed to read body: %v", err)
		if errors.Is(err, errBodyTooLarge) {
			response.Message(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		response.Error(c, err, nil)
		return
	}

	// An empty X-Hook-Secret counts as absent.
	if secret := webhook.HookSecret(c.Request.Header); secret != "" {
		h.handshake(c, sub, secret)
		return
	}

	if signature := webhook.SignatureHeader(c.Request.Header); signature != "" {
		h.delivery(c, sub, body, signature)
		return
	}

	h.l.Warnf(ctx, "ticket.delivery.http.HandleWebhook: no handshake or signature header for prefix %s", sub.Prefix)
	response.Message(c, http.StatusBadRequest, msgInvalidRequest)
}

func (h *handler) handshake(c *gin.Context, sub model.Subscription, secret string) {
	ctx := c.Request.Context()

	if err := h.security.CheckRateLimit(handshakeLimitKey(sub)); err != nil {
		h.l.Warnf(ctx, "ticket.delivery.http.handshake: %v", err)
		response.TooManyRequests(c)
		return
	}

	err := h.uc.Handshake(ctx, ticket.HandshakeInput{Subscription: sub, Secret: secret})
	if err != nil {
		h.l.Errorf(ctx, "ticket.delivery.http.handshake: uc.Handshake: %v", err)
		response.InternalError(c, err)
		return
	}

	c.Header(webhook.HeaderHookSecret, secret)
	response.Message(c, http.StatusOK, msgHandshakeOK)
}

func (h *handler) delivery(c *gin.Context, sub model.Subscription, body []byte, signature string) {
	ctx := c.Request.Context()

	err := h.uc.Authenticate(ctx, ticket.AuthenticateInput{Subscription: sub, Body: body, Signature: signature})
	if err != nil {
		h.l.Warnf(ctx, "ticket.delivery.http.delivery: uc.Authenticate: %v", err)
		response.Message(c, http.StatusForbidden, msgInvalidSignature)
		return
	}

	// Only authenticated deliveries spend the prefix's budget, so forged
	// traffic cannot starve Asana's own requests.
	if err := h.security.CheckRateLimit(deliveryLimitKey(sub)); err != nil {
		h.l.Warnf(ctx, "ticket.delivery.http.delivery: %v", err)
		response.TooManyRequests(c)
		return
	}

	if len(bytes.TrimSpace(body)) == 0 {
		h.l.Infof(ctx, "ticket.delivery.http.delivery: empty signed body for prefix %s", sub.Prefix)
		response.Message(c, http.StatusOK, msgEventProcessed)
		return
	}

	events, err := webhook.ParseEventBatch(body)
	if err != nil {
		h.l.Errorf(ctx, "ticket.delivery.http.delivery: %v", err)
		response.Message(c, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	// Asana may drop the connection before the batch is done; the counter
	// has already been advanced for renames in flight, so let them finish.
	h.uc.ProcessEvents(context.WithoutCancel(ctx), ticket.ProcessEventsInput{
		Subscription: sub,
		Events:       events,
	})

	response.Message(c, http.StatusOK, msgEventProcessed)
}
