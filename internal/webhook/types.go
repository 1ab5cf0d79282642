package webhook

// Header names of the Asana webhook protocol. Lookups go through
// http.Header, which canonicalises case.
const (
	HeaderHookSecret       = "X-Hook-Secret"
	HeaderRequestSignature = "X-Asana-Request-Signature"
)

// SecurityConfig holds webhook security settings
type SecurityConfig struct {
	AllowedIPs      []string // IP whitelist (optional)
	RateLimitPerMin int      // Max requests per minute per prefix, 0 disables
}
