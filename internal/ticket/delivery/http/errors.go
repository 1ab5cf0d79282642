package http

// Response messages of the webhook endpoint. Asana only looks at the status
// code; the bodies are kept stable for operators reading logs.
const (
	msgMissingParams    = "Missing counter_key or prefix"
	msgHandshakeOK      = "Webhook handshake successful"
	msgInvalidSignature = "Invalid signature"
	msgInvalidPayload   = "Invalid JSON payload"
	msgEventProcessed   = "Webhook event processed"
	msgInvalidRequest   = "Invalid request"
	msgBodyTooLarge     = "Request body too large"
)
