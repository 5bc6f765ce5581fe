package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/metrics"
)

// Entries idle longer than this are pruned; a dashboard that stopped
// polling gets its limiter rebuilt from scratch on return.
const staleClientAfter = 3 * time.Minute

// Limits sizes the rate limiter. Per-client rates should leave room
// for a dashboard polling the device endpoints once or twice a second
// plus the occasional burst when a page loads every panel at once.
type Limits struct {
	GlobalRate  float64 // requests per second across all clients
	GlobalBurst int
	PerIPRate   float64 // requests per second per client
	PerIPBurst  int
}

// RateLimiter enforces a global ceiling and a per-client allowance.
// Stale client entries are pruned lazily on access, so the limiter
// needs no background goroutine and nothing to shut down.
type RateLimiter struct {
	global *rate.Limiter

	mu         sync.Mutex
	clients    map[string]*clientLimiter
	perIPRate  rate.Limit
	perIPBurst int
	lastPrune  time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter from the configured limits.
func NewRateLimiter(l Limits) *RateLimiter {
	return &RateLimiter{
		global:     rate.NewLimiter(rate.Limit(l.GlobalRate), l.GlobalBurst),
		clients:    make(map[string]*clientLimiter),
		perIPRate:  rate.Limit(l.PerIPRate),
		perIPBurst: l.PerIPBurst,
		lastPrune:  time.Now(),
	}
}

// Limit rejects requests over budget with the API error envelope.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.global.Allow() {
			metrics.RateLimitRejections.WithLabelValues("global").Inc()
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitGlobal())
			return
		}

		if !rl.allow(clientIP(r)) {
			metrics.RateLimitRejections.WithLabelValues("ip").Inc()
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitIP())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastPrune) > time.Minute {
		rl.pruneLocked(now)
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.perIPRate, rl.perIPBurst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > staleClientAfter {
			delete(rl.clients, ip)
		}
	}
	rl.lastPrune = now
}

// clientIP resolves the caller's address, trusting the usual proxy
// headers before falling back to the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop in the list is the original client.
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
