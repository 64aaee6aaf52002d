// Package secgate validates inbound requests before they reach business
// handlers: declared size, media type for state-changing methods, and an
// injection-signature blocklist applied to the full request URL.
package secgate

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// MaxBodyBytes is the declared-size ceiling for any request body.
const MaxBodyBytes = 10 << 20

var acceptedMediaPrefixes = []string{"application/json", "multipart/form-data"}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)document\.`),
	regexp.MustCompile(`(?i)window\.`),
}

type sizeRejection struct {
	Error   string `json:"error"`
	MaxSize string `json:"max_size"`
}

type plainRejection struct {
	Error string `json:"error"`
}

// Gate screens requests independently of the rate limiter; both checks run
// on every request.
type Gate struct {
	logger *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(logger *slog.Logger) *Gate {
	return &Gate{logger: logger}
}

// Middleware applies the gate checks in order, short-circuiting on the
// first failure.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > MaxBodyBytes {
			httpx.JSON(w, http.StatusRequestEntityTooLarge, sizeRejection{Error: "Request too large", MaxSize: "10MB"})
			return
		}

		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if !hasAcceptedMediaType(contentType) {
				httpx.JSON(w, http.StatusUnsupportedMediaType, plainRejection{Error: "Unsupported media type"})
				return
			}
		}

		if ContainsSuspiciousContent(requestURL(r)) {
			if g.logger != nil {
				g.logger.Warn("suspicious url pattern", slog.String("path", r.URL.Path))
			}
			httpx.JSON(w, http.StatusBadRequest, plainRejection{Error: "Invalid request"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hasAcceptedMediaType(contentType string) bool {
	for _, prefix := range acceptedMediaPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func requestURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	return r.Host + r.URL.String()
}

// ContainsSuspiciousContent reports whether the string matches any of the
// injection signatures.
func ContainsSuspiciousContent(content string) bool {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}
