package log

// ZapConfig configures the zap-backed Logger.
type ZapConfig struct {
	Level        string // debug, info, warn, error
	Mode         string // "production" or anything else for development
	Encoding     string // "json" or "console"
	ColorEnabled bool   // colored levels, console encoding only
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"

	// FieldRequestID is the log field carrying the request ID.
	FieldRequestID = "request_id"
)
