package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"notefeed/internal/notes"
)

// sweepThreshold bounds the window map: once it grows past this many
// clients, expired entries are dropped on the next Allow.
const sweepThreshold = 1024

// RateLimiter is an advisory fixed-window request limiter keyed by client
// address. It holds its own window map; construct one per process and
// inject it into the request pipeline.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*windowEntry
	max     int
	window  time.Duration
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*windowEntry),
		max:     max,
		window:  window,
	}
}

// Allow records one request for clientID and reports whether it fits in
// the current window. When it does not, the second return value is the
// number of seconds until the window resets.
func (rl *RateLimiter) Allow(clientID string) (bool, int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.clients) > sweepThreshold {
		for id, e := range rl.clients {
			if now.After(e.resetAt) {
				delete(rl.clients, id)
			}
		}
	}

	e, ok := rl.clients[clientID]
	if !ok || now.After(e.resetAt) {
		rl.clients[clientID] = &windowEntry{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if e.count >= rl.max {
		retryAfter := int(time.Until(e.resetAt).Seconds()) + 1
		return false, retryAfter
	}

	e.count++
	return true, 0
}

// Middleware rejects over-limit requests with a 429 envelope carrying the
// retry-after seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		ok, retryAfter := rl.Allow(host)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(notes.Envelope{
				Success:    false,
				Message:    "Too many requests. Please try again later.",
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
