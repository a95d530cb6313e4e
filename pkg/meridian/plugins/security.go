package plugins

import (
	"context"

	"github.com/meridian-http/meridian"
)

// SecurityHeadersConfig configures the static security-header plugin,
// grounded on the header-writing portion of fasthttpadapter/middleware.go's
// Recovery/Logger helpers and the CORS/CSRF middlewares' own header
// constants, generalized into its own plugin since the teacher never
// isolated this concern on its own.
type SecurityHeadersConfig struct {
	FrameOptions          string // default "DENY"
	ContentTypeNosniff    bool   // default true
	HSTS                  string // e.g. "max-age=63072000; includeSubDomains"
	ContentSecurityPolicy string
	ReferrerPolicy        string // default "strict-origin-when-cross-origin"
}

// DefaultSecurityHeadersConfig returns conservative, broadly-safe defaults.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		FrameOptions:       "DENY",
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
}

type securityHeadersPlugin struct {
	meridian.BasePlugin
	cfg SecurityHeadersConfig
}

// SecurityHeaders returns a Plugin that stamps a fixed set of hardening
// headers onto every response in the response phase (after the handler, so
// a handler overriding one of them wins).
func SecurityHeaders(cfg SecurityHeadersConfig) meridian.Plugin {
	return &securityHeadersPlugin{cfg: cfg}
}

func (p *securityHeadersPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	return meridian.Continue
}

func (p *securityHeadersPlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
	if resp.Header.Get("X-Frame-Options") == "" && p.cfg.FrameOptions != "" {
		resp.Header.Set("X-Frame-Options", p.cfg.FrameOptions)
	}
	if p.cfg.ContentTypeNosniff && resp.Header.Get("X-Content-Type-Options") == "" {
		resp.Header.Set("X-Content-Type-Options", "nosniff")
	}
	if p.cfg.HSTS != "" && resp.Header.Get("Strict-Transport-Security") == "" {
		resp.Header.Set("Strict-Transport-Security", p.cfg.HSTS)
	}
	if p.cfg.ContentSecurityPolicy != "" && resp.Header.Get("Content-Security-Policy") == "" {
		resp.Header.Set("Content-Security-Policy", p.cfg.ContentSecurityPolicy)
	}
	if p.cfg.ReferrerPolicy != "" && resp.Header.Get("Referrer-Policy") == "" {
		resp.Header.Set("Referrer-Policy", p.cfg.ReferrerPolicy)
	}
}
