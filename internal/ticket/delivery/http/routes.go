package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the webhook endpoint. The root alias keeps webhook
// targets created against the bare function URL working.
func RegisterRoutes(r gin.IRouter, h Handler) {
	r.POST("/webhook", h.HandleWebhook)
	r.POST("/", h.HandleWebhook)
}
