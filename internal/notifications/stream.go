package notifications

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Stream serves the live notification feed over server-sent events,
// backed by redis pub/sub.
type Stream struct {
	authority *sessionauth.Authority
	redis     *redis.Client
	logger    *slog.Logger

	// heartbeat keeps proxies from closing idle connections.
	heartbeat time.Duration
}

// NewStream builds a Stream instance.
func NewStream(authority *sessionauth.Authority, redisClient *redis.Client, logger *slog.Logger) *Stream {
	return &Stream{authority: authority, redis: redisClient, logger: logger, heartbeat: 30 * time.Second}
}

// ServeHTTP upgrades the request to an SSE stream for the token's subject.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Missing token")
		return
	}
	identity, err := s.authority.ResolveIdentity(r.Context(), raw)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	// Lift the server write deadline; the stream outlives it.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && s.logger != nil {
		s.logger.Warn("clear stream write deadline", slog.Any("error", err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	sub := s.redis.Subscribe(r.Context(), StreamChannel(identity.ID))
	defer func() {
		if err := sub.Close(); err != nil && s.logger != nil {
			s.logger.Warn("close stream subscription", slog.Any("error", err))
		}
	}()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
