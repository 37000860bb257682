package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the requester's network identity for fingerprinting:
// first X-Forwarded-For hop, then X-Real-IP, then the socket peer. Returns
// "unknown" when nothing usable is present, so the fingerprint input is
// never empty.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
