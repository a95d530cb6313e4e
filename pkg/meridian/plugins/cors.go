// Package plugins provides the built-in Plugin implementations referenced
// by SPEC_FULL.md's "Built-in plugin catalog": CORS, request ID, body size
// limit, rate limiting, compression, caching, JSON+validation, structured
// logging, security headers, and CSRF protection. Each is grounded on the
// corresponding fasthttpadapter middleware carried over from the teacher
// repo, generalized from the onion-model MiddlewareFunc to the two-phase
// meridian.Plugin interface.
package plugins

import (
	"context"
	"strconv"
	"strings"

	"github.com/meridian-http/meridian"
)

// CORSConfig mirrors fasthttpadapter.CORSOptions (cors_middleware.go),
// trimmed to the fields a request/response-phase plugin pair needs.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns the same permissive defaults as the teacher's
// DefaultCORSOptions, suitable for development only.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:         600,
	}
}

// corsPlugin implements meridian.Plugin. Call writes the CORS headers onto
// the in-flight response for every request and short-circuits OPTIONS
// preflights with a 204; CallResponse does nothing, so a handler that
// replaces the response wholesale drops the headers.
type corsPlugin struct {
	cfg     CORSConfig
	methods string
	headers string
	exposed string
	maxAge  string
}

// CORS builds a Plugin from cfg, precomputing the joined header values once
// at registration time instead of on every request.
func CORS(cfg CORSConfig) meridian.Plugin {
	p := &corsPlugin{
		cfg:     cfg,
		methods: strings.Join(cfg.AllowedMethods, ", "),
		headers: strings.Join(cfg.AllowedHeaders, ", "),
		exposed: strings.Join(cfg.ExposedHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

func (p *corsPlugin) allowOrigin(origin string) string {
	if len(p.cfg.AllowedOrigins) == 1 && p.cfg.AllowedOrigins[0] == "*" {
		return "*"
	}
	for _, o := range p.cfg.AllowedOrigins {
		if o == origin {
			return o
		}
	}
	return ""
}

func (p *corsPlugin) applyHeaders(resp *meridian.Response, origin string) {
	if allow := p.allowOrigin(origin); allow != "" {
		resp.Header.Set("Access-Control-Allow-Origin", allow)
	}
	if p.cfg.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.methods != "" {
		resp.Header.Set("Access-Control-Allow-Methods", p.methods)
	}
	if p.headers != "" {
		resp.Header.Set("Access-Control-Allow-Headers", p.headers)
	}
	if p.exposed != "" {
		resp.Header.Set("Access-Control-Expose-Headers", p.exposed)
	}
	if p.maxAge != "" {
		resp.Header.Set("Access-Control-Max-Age", p.maxAge)
	}
}

func (p *corsPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	origin := req.Header.Get("Origin")
	p.applyHeaders(resp, origin)
	if req.Method == "OPTIONS" {
		resp.Status = 204
		resp.Body = nil
		return meridian.ShortCircuitWith(resp)
	}
	return meridian.Continue
}

func (p *corsPlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
}
