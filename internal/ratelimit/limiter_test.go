package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(clock *fakeClock) *Limiter {
	return NewLimiter(DefaultTable(), WithClock(clock.Now))
}

func TestLoginWindowExhaustionAndRecovery(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("1.2.3.4", http.MethodPost, "/api/auth/login"), "request %d should be admitted", i+1)
	}

	clock.Advance(10 * time.Second)
	assert.False(t, l.Allow("1.2.3.4", http.MethodPost, "/api/auth/login"), "6th request inside window must be rejected")

	clock.Advance(291 * time.Second) // t=301, first burst has aged out
	assert.True(t, l.Allow("1.2.3.4", http.MethodPost, "/api/auth/login"))
}

func TestSlidingWindowNotFixedBucket(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("c", http.MethodPost, "/api/auth/login"))
	}

	clock.Advance(150 * time.Second)
	assert.False(t, l.Allow("c", http.MethodPost, "/api/auth/login"), "half window elapsed, still full")

	clock.Advance(151 * time.Second)
	assert.True(t, l.Allow("c", http.MethodPost, "/api/auth/login"), "earliest stamps aged out")
}

func TestRejectionsDoNotConsumeSlots(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("c", http.MethodPost, "/api/auth/login"))
	}
	for i := 0; i < 20; i++ {
		require.False(t, l.Allow("c", http.MethodPost, "/api/auth/login"))
	}

	// Only the 5 admitted stamps count. Once they expire the client gets
	// the full budget back despite the rejected burst.
	clock.Advance(301 * time.Second)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("c", http.MethodPost, "/api/auth/login"))
	}
}

func TestRulePrecedence(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		method string
		path   string
		want   Rule
	}{
		{"exact login", http.MethodPost, "/api/auth/login", Rule{5, 5 * time.Minute}},
		{"exact register", http.MethodPost, "/api/auth/register", Rule{3, 5 * time.Minute}},
		{"exact admin login", http.MethodPost, "/api/auth/admin-login", Rule{3, 5 * time.Minute}},
		{"exact writer request", http.MethodPost, "/api/writer-requests", Rule{1, time.Hour}},
		{"admin prefix", http.MethodGet, "/api/admin/stats", Rule{50, time.Minute}},
		{"shayari create", http.MethodPost, "/api/shayaris", Rule{10, time.Minute}},
		{"shayari list falls to default", http.MethodGet, "/api/shayaris", Rule{100, time.Minute}},
		{"unknown path", http.MethodGet, "/api/whatever", Rule{100, time.Minute}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, table.Resolve(tc.method, tc.path))
		})
	}
}

func TestClientsAreIsolated(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("a", http.MethodPost, "/api/auth/login"))
	}
	require.False(t, l.Allow("a", http.MethodPost, "/api/auth/login"))
	assert.True(t, l.Allow("b", http.MethodPost, "/api/auth/login"), "another client keeps its own budget")
}

func TestConcurrentChecksNeverOveradmit(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	const workers = 50
	var wg sync.WaitGroup
	admitted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("racer", http.MethodPost, "/api/auth/login") {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	assert.Equal(t, 5, count, "exactly maxRequests admissions under contention")
}

func TestSweepDropsExpiredClients(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	require.True(t, l.Allow("short", http.MethodGet, "/api/shayaris"))
	require.True(t, l.Allow("fresh", http.MethodGet, "/api/shayaris"))
	require.Equal(t, 2, l.TrackedClients())

	// Past the longest window (1h for writer requests) only "short" has
	// expired stamps; "fresh" re-records inside the horizon.
	clock.Advance(61 * time.Minute)
	require.True(t, l.Allow("fresh", http.MethodGet, "/api/shayaris"))
	l.Sweep()

	assert.Equal(t, 1, l.TrackedClients())
}

func TestSweepDoesNotOrphanInFlightClients(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	// A checker has fetched the entry but not yet locked it when the
	// sweep removes the idle client from the map.
	stale := l.client("1.2.3.4")
	l.Sweep()
	require.True(t, stale.gone)
	require.Equal(t, 0, l.TrackedClients())

	require.True(t, l.Allow("1.2.3.4", http.MethodGet, "/api/shayaris"))

	// The admission must land on the tracked entry, not the orphan.
	assert.Empty(t, stale.stamps)
	fresh := l.client("1.2.3.4")
	assert.Len(t, fresh.stamps, 1)
	assert.Equal(t, 1, l.TrackedClients())
}

func TestClientIDExtraction(t *testing.T) {
	newReq := func(remote string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/shayaris", nil)
		r.RemoteAddr = remote
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	tests := []struct {
		name    string
		req     *http.Request
		want    string
	}{
		{"forwarded-for first hop", newReq("10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9, 198.51.100.2"}), "203.0.113.9"},
		{"real-ip fallback", newReq("10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.10"}), "203.0.113.10"},
		{"forwarded-for beats real-ip", newReq("10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "203.0.113.10"}), "203.0.113.9"},
		{"remote addr", newReq("192.0.2.7:55555", nil), "192.0.2.7"},
		{"no source", newReq("", nil), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClientID(tc.req))
		})
	}
}

func TestMiddlewareRejectionBody(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	handler := l.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:1000"
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded","message":"Too many requests. Please try again later.","retry_after":60}`, res.Body.String())
}
