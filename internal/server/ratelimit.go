package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/paintgalaxy/server/internal/config"
	"github.com/paintgalaxy/server/internal/logger"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg             config.RateLimitConfig
	mu              sync.Mutex
	clients         map[string]*rate.Limiter
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiter creates a limiter and, when enabled, starts the goroutine
// that forgets idle clients. Call Stop to end it.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:             cfg,
		clients:         make(map[string]*rate.Limiter),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	if rl.cfg.Burst <= 0 {
		rl.cfg.Burst = 1
	}

	if cfg.Enabled {
		go rl.cleanupLoop()
	}
	return rl
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.cfg.Enabled {
		return true
	}
	return rl.limiter(ip).Allow()
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
		rl.clients[ip] = l
	}
	return l
}

// Middleware rejects requests over the limit with 429, keying clients
// through ips.
func (rl *RateLimiter) Middleware(ips *ClientIPs, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ips.Of(r)
		if !rl.Allow(ip) {
			logger.Warning("Rate limit exceeded",
				"client_ip", ip,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops clients whose bucket has refilled.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, l := range rl.clients {
		if l.TokensAt(now) >= float64(rl.cfg.Burst) {
			delete(rl.clients, ip)
		}
	}
}
