package middleware

import (
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateLimiter allows limit requests per client IP in each fixed window.
type RateLimiter struct {
	visitors *gocache.Cache
	limit    int
	window   time.Duration

	// Exempt, when set, lets matching requests through uncounted.
	Exempt func(r *http.Request) bool
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: gocache.New(window, window),
		limit:    limit,
		window:   window,
	}
}

// Allow counts one request from ip and reports whether it is within budget.
func (rl *RateLimiter) Allow(ip string) bool {
	// Add only succeeds for the first request of a window.
	if err := rl.visitors.Add(ip, 1, rl.window); err == nil {
		return true
	}
	count, err := rl.visitors.IncrementInt(ip, 1)
	if err != nil {
		// The window expired between Add and IncrementInt.
		rl.visitors.Set(ip, 1, rl.window)
		return true
	}
	return count <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exempt := rl.Exempt != nil && rl.Exempt(r)
		if rl.limit > 0 && !exempt && !rl.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
