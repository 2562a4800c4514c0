package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
)

// RateLimiter is a sliding-window counter per key (user id or IP address).
// State is per process; a limit applies per instance.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}

	go rl.sweepLoop()

	return rl
}

// Allow records a hit for key when it is under the limit. Otherwise it
// reports how long until the oldest hit leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := rl.prune(key, now)

	if len(recent) >= rl.limit {
		return false, recent[0].Add(rl.window).Sub(now)
	}

	rl.hits[key] = append(recent, now)
	return true, 0
}

// prune drops hits older than the window and stores what is left.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)

	hits := rl.hits[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == len(hits) {
		delete(rl.hits, key)
		return nil
	}
	hits = hits[i:]
	rl.hits[key] = hits
	return hits
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key := range rl.hits {
			rl.prune(key, now)
		}
		rl.mu.Unlock()
	}
}

// RateLimitUser limits a route per authenticated user, falling back to the
// client IP. Nudges use 10 requests per 10 minutes.
func RateLimitUser(limit int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := ctxkeys.UserID(r.Context())
			if key == "" {
				key = "ip:" + getClientIP(r)
			}

			ok, retryAfter := limiter.Allow(key)
			if !ok {
				slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "retry_after", retryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				ErrorResponse(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}

			next(w, r)
		}
	}
}

// getClientIP prefers proxy headers, then the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
