package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pixeldesk/backend/pkg/response"
)

// ipLimiter tracks one client's token bucket and its last use so idle
// entries can be evicted.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPThrottle is a coarse per-IP request throttle in front of the whole
// API. It is independent of the per-user operation budgets enforced in
// the handlers.
type IPThrottle struct {
	mu       sync.Mutex
	visitors map[string]*ipLimiter
	rate     rate.Limit
	burst    int
}

// NewIPThrottle creates a throttle allowing r requests per second with
// the given burst, and starts the background eviction loop.
func NewIPThrottle(r rate.Limit, burst int) *IPThrottle {
	t := &IPThrottle{
		visitors: make(map[string]*ipLimiter),
		rate:     r,
		burst:    burst,
	}
	go t.evictLoop()
	return t
}

func (t *IPThrottle) limiterFor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[ip]
	if !ok {
		v = &ipLimiter{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (t *IPThrottle) evictLoop() {
	for {
		time.Sleep(time.Minute)
		t.mu.Lock()
		for ip, v := range t.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(t.visitors, ip)
			}
		}
		t.mu.Unlock()
	}
}

// Handler wraps an http.Handler with the throttle.
func (t *IPThrottle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := RealIP(r)
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !t.limiterFor(ip).Allow() {
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
