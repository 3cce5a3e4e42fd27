package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/propelyu/pkg/response"
)

// window counts requests from one client in the current fixed window.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter allows max requests per client IP per window.
type RateLimiter struct {
	max    int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
}

// NewRateLimiter builds a limiter. Call Sweep in a goroutine to evict idle
// clients; it stops when ctx is cancelled.
func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	return &RateLimiter{max: max, period: period, clients: map[string]*window{}}
}

// Allow records one request from ip and reports whether it is within limits.
func (l *RateLimiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.max
}

// Sweep evicts expired windows every period until ctx is done.
func (l *RateLimiter) Sweep(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, w := range l.clients {
				if now.After(w.resetAt) {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware rejects clients over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.max > 0 && !l.Allow(clientIP(r), time.Now()) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
