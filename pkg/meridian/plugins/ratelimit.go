package plugins

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/meridian-http/meridian"
)

// RateLimitConfig mirrors fasthttpadapter.RateLimitOptions (ratelimit_middleware.go).
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type rateLimitEntry struct {
	timestamp time.Time
	count     int
}

// rateLimiter is the teacher's RateLimiter, generalized to key by whatever
// string the caller extracts (here, best-effort client IP) rather than
// being wired directly to a fasthttp.RequestCtx.
type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*rateLimitEntry
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg, clients: make(map[string]*rateLimitEntry)}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	entry, ok := rl.clients[key]
	if !ok || now.Sub(entry.timestamp) > rl.cfg.Window {
		rl.clients[key] = &rateLimitEntry{timestamp: now, count: 1}
		return true
	}
	if entry.count < rl.cfg.Requests {
		entry.count++
		return true
	}
	return false
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for key, entry := range rl.clients {
		if now.Sub(entry.timestamp) > rl.cfg.Window {
			delete(rl.clients, key)
		}
	}
}

type rateLimitPlugin struct {
	meridian.BasePlugin
	limiter *rateLimiter
}

// RateLimit returns a Plugin enforcing cfg.Requests per cfg.Window per
// client IP, starting a background goroutine that periodically evicts
// stale buckets, same as the teacher's RateLimitMiddleware.
func RateLimit(cfg RateLimitConfig) meridian.Plugin {
	limiter := newRateLimiter(cfg)
	go func() {
		ticker := time.NewTicker(cfg.Window * 2)
		for range ticker.C {
			limiter.cleanup()
		}
	}()
	return &rateLimitPlugin{limiter: limiter}
}

func clientIP(req *meridian.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := net.ParseIP(fwd); ip != nil {
			return ip.String()
		}
	}
	if real := req.Header.Get("X-Real-IP"); real != "" {
		if ip := net.ParseIP(real); ip != nil {
			return ip.String()
		}
	}
	return req.Host
}

func (p *rateLimitPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	if !p.limiter.allow(clientIP(req)) {
		errResp := meridian.NewResponse()
		errResp.Status = 429
		errResp.Header.Set("Content-Type", "application/json")
		errResp.SetBody([]byte(`{"error":"rate limit exceeded"}`))
		return meridian.ShortCircuitWith(errResp)
	}
	return meridian.Continue
}
