package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-IP limiter table; the least recently
// seen client is dropped first.
const maxTrackedClients = 10000

// RateLimiter throttles each client IP to rps requests per second with the
// given burst.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  *lru.Cache[string, *rate.Limiter]
	rps       rate.Limit
	burst     int
	whitelist map[string]bool
}

// NewRateLimiter returns a limiter; rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int, whitelistedIPs ...string) *RateLimiter {
	cache, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	if burst < 1 {
		burst = 1
	}

	wl := make(map[string]bool, len(whitelistedIPs))
	for _, ip := range whitelistedIPs {
		wl[ip] = true
	}
	return &RateLimiter{
		limiters:  cache,
		rps:       rate.Limit(rps),
		burst:     burst,
		whitelist: wl,
	}
}

func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters.Get(ip); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters.Add(ip, limiter)
	return limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.rps <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if l.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.rps)))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(rps rate.Limit) int {
	if rps >= 1 {
		return 1
	}
	return int(1/float64(rps) + 0.5)
}

// clientIP is the remote address host; the router's RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For when behind a proxy.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
