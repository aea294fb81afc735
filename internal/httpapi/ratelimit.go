package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPLimiter rate-limits requests per client IP with a token bucket each.
// Buckets idle for longer than idleTTL are dropped on the next sweep.
type IPLimiter struct {
	mu      sync.Mutex
	m       map[string]*ipBucket
	r       rate.Limit
	b       int
	idleTTL time.Duration
	now     func() time.Time
	lastGC  time.Time
}

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewIPLimiter(reqPerSec float64, burst int) *IPLimiter {
	return &IPLimiter{
		m:       make(map[string]*ipBucket),
		r:       rate.Limit(reqPerSec),
		b:       burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether a request from ip may proceed now.
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastGC) > l.idleTTL {
		for k, bkt := range l.m {
			if now.Sub(bkt.lastSeen) > l.idleTTL {
				delete(l.m, k)
			}
		}
		l.lastGC = now
	}
	bkt, ok := l.m[ip]
	if !ok {
		bkt = &ipBucket{lim: rate.NewLimiter(l.r, l.b)}
		l.m[ip] = bkt
	}
	bkt.lastSeen = now
	l.mu.Unlock()

	return bkt.lim.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *IPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMIT", "too many requests")
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
