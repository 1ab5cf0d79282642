package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Verify reports whether signature is the hex HMAC-SHA256 of body keyed with
// secret. The digest comparison is constant-time. Any malformed input,
// including an empty secret, yields false.
func Verify(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(Sign(secret, body), provided)
}

// Sign returns the raw HMAC-SHA256 of body keyed with secret.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// SignHex returns Sign as a lowercase hex string, the format Asana sends.
func SignHex(secret string, body []byte) string {
	return hex.EncodeToString(Sign(secret, body))
}

// HookSecret returns the X-Hook-Secret value, or "" when the header is
// absent or empty. Keys that were stored without canonicalisation are
// matched case-insensitively.
func HookSecret(h http.Header) string {
	if v := h.Get(HeaderHookSecret); v != "" {
		return v
	}
	for k, vs := range h {
		if strings.EqualFold(k, HeaderHookSecret) && len(vs) > 0 && vs[0] != "" {
			return vs[0]
		}
	}
	return ""
}

// SignatureHeader returns the value of the request signature header.
// X-Asana-Request-Signature is preferred; any other X-*-Request-Signature
// header is accepted, matched case-insensitively.
func SignatureHeader(h http.Header) string {
	if v := h.Get(HeaderRequestSignature); v != "" {
		return v
	}
	for k, vs := range h {
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "x-") && strings.HasSuffix(lk, "-request-signature") && len(lk) > len("x--request-signature") {
			return vs[0]
		}
	}
	return ""
}
