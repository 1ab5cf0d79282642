package response

// Resp is the standard JSON response body. Webhook replies only carry
// Message, so every other field is omitted when empty.
type Resp struct {
	ErrorCode int    `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}
