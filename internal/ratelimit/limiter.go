package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits or rejects requests using a sliding window per client.
// One history is kept per client identifier and shared across rules; the
// window applied on each check is the one from the resolved rule.
type Limiter struct {
	table *Table
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLog
}

// clientLog serializes check-and-record for one client. The stamps slice is
// sorted ascending; eviction drops from the front, admission appends now.
// gone is set under mu when Sweep removes the entry from the map, so a
// caller that looked the entry up before the sweep re-fetches instead of
// recording on an orphan.
type clientLog struct {
	mu     sync.Mutex
	stamps []time.Time
	gone   bool
}

// Option customizes Limiter construction.
type Option func(*Limiter)

// WithClock overrides the time source. Tests use it to drive the window.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter constructs a limiter over the given rule table.
func NewLimiter(table *Table, opts ...Option) *Limiter {
	l := &Limiter{
		table:   table,
		now:     time.Now,
		clients: make(map[string]*clientLog),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether the request may proceed. Admitted requests record
// the current timestamp; rejected requests never consume a slot.
func (l *Limiter) Allow(clientID, method, path string) bool {
	rule := l.table.Resolve(method, path)
	now := l.now()

	var entry *clientLog
	for {
		entry = l.client(clientID)
		entry.mu.Lock()
		if !entry.gone {
			break
		}
		entry.mu.Unlock()
	}
	defer entry.mu.Unlock()

	cutoff := now.Add(-rule.Window)
	idx := 0
	for idx < len(entry.stamps) && entry.stamps[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		entry.stamps = append(entry.stamps[:0], entry.stamps[idx:]...)
	}

	if len(entry.stamps) >= rule.MaxRequests {
		return false
	}
	entry.stamps = append(entry.stamps, now)
	return true
}

func (l *Limiter) client(id string) *clientLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.clients[id]
	if !ok {
		entry = &clientLog{}
		l.clients[id] = entry
	}
	return entry
}

// Sweep removes clients whose entire history is older than the longest
// rule window. It bounds memory under many distinct client addresses.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-l.table.MaxWindow())

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, entry := range l.clients {
		entry.mu.Lock()
		if len(entry.stamps) == 0 || entry.stamps[len(entry.stamps)-1].Before(cutoff) {
			entry.gone = true
			delete(l.clients, id)
		}
		entry.mu.Unlock()
	}
}

// TrackedClients reports the number of client histories currently held.
func (l *Limiter) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// StartJanitor sweeps expired client histories until ctx is canceled.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}
