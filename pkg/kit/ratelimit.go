package kit

import (
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IPRateLimiter caps how many requests one client address may make within
// a sliding window. Used on upload routes, where each request parses a file.
type IPRateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string][]time.Time // oldest first
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string][]time.Time),
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			WriteError(w, r, http.StatusTooManyRequests, "Too Many Requests", "upload limit reached, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records a request at now unless the client is already at its limit.
func (l *IPRateLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := expire(l.clients[client], now.Add(-l.window))
	if len(recent) == 0 {
		delete(l.clients, client)
	}

	if len(recent) >= l.limit {
		l.clients[client] = recent
		return false
	}
	l.clients[client] = append(recent, now)
	return true
}

// expire drops leading timestamps at or before cutoff.
func expire(seen []time.Time, cutoff time.Time) []time.Time {
	i := sort.Search(len(seen), func(i int) bool { return seen[i].After(cutoff) })
	return seen[i:]
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
