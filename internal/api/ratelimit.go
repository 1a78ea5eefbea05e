package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the IP-based rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64       // Requests allowed per second per IP
	Burst             int           // Maximum burst size
	CleanupInterval   time.Duration // How often idle IPs are forgotten
}

// DefaultRateLimitConfig leaves room for a browser polling frames at 20 Hz
// alongside its input posts.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 40,
	Burst:             60,
	CleanupInterval:   5 * time.Minute,
}

// LimiterStats is a point-in-time view of a limiter, served by /api/stats.
type LimiterStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
	Tracked  int    `json:"tracked"` // IPs currently holding state
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles HTTP requests per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	config  RateLimitConfig

	allowed  uint64
	rejected uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a limiter and starts its janitor.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	rl := &IPRateLimiter{
		buckets: make(map[string]*ipBucket),
		config:  cfg,
		stop:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop ends the janitor goroutine.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether ip may make another request now.
func (rl *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = now
	ok = b.limiter.AllowN(now, 1)
	if ok {
		rl.allowed++
	} else {
		rl.rejected++
	}
	rl.mu.Unlock()

	return ok
}

func (rl *IPRateLimiter) janitor() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.forgetIdle(now.Add(-2 * rl.config.CleanupInterval))
		}
	}
}

// forgetIdle drops buckets not touched since cutoff.
func (rl *IPRateLimiter) forgetIdle(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, ip)
			n++
		}
	}
	return n
}

// Stats returns request counters and the number of tracked IPs.
func (rl *IPRateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return LimiterStats{
		Allowed:  rl.allowed,
		Rejected: rl.rejected,
		Tracked:  len(rl.buckets),
	}
}

// Middleware answers 429 once a client exceeds its budget.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the peer address of r. Forwarding headers are honoured
// only when the peer is a loopback proxy.
func clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if ip := net.ParseIP(peer); ip == nil || !ip.IsLoopback() {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// connLimiter caps concurrent WebSocket connections per IP.
type connLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	maxPerIP int

	accepted uint64
	rejected uint64
}

func newConnLimiter(maxPerIP int) *connLimiter {
	return &connLimiter{open: make(map[string]int), maxPerIP: maxPerIP}
}

// Acquire reserves a connection slot for ip.
func (cl *connLimiter) Acquire(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.open[ip] >= cl.maxPerIP {
		cl.rejected++
		return false
	}
	cl.open[ip]++
	cl.accepted++
	return true
}

// Release frees a slot reserved by Acquire.
func (cl *connLimiter) Release(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	switch n := cl.open[ip]; {
	case n > 1:
		cl.open[ip] = n - 1
	case n == 1:
		delete(cl.open, ip)
	}
}

// Stats reports accepted and rejected upgrades and the IPs with open
// connections.
func (cl *connLimiter) Stats() LimiterStats {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return LimiterStats{
		Allowed:  cl.accepted,
		Rejected: cl.rejected,
		Tracked:  len(cl.open),
	}
}

// AllowedOrigins defines the origins always accepted for WebSocket upgrades
var AllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// IsAllowedOrigin checks an origin against the defaults and extra.
// Entries in extra may use a single "*" wildcard, as in CORS settings.
func IsAllowedOrigin(origin string, extra []string) bool {
	if origin == "" {
		return false
	}

	// Allow localhost with any port
	for _, allowed := range AllowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}

	for _, allowed := range extra {
		if matchOrigin(allowed, origin) {
			return true
		}
	}
	return false
}

func matchOrigin(pattern, origin string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == origin
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) &&
		strings.HasSuffix(origin, suffix)
}
