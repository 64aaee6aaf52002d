package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientID derives the rate-limit bucket key for a request. Behind a
// reverse proxy only the first hop of X-Forwarded-For is trusted; the rest
// of the chain is client-asserted.
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
