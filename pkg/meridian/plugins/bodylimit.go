package plugins

import (
	"context"
	"strings"

	"github.com/meridian-http/meridian"
)

// BodyLimitConfig mirrors fasthttpadapter.BodyLimitConfig (body_limit_middleware.go).
type BodyLimitConfig struct {
	MaxSize          int64
	ErrorMessage     string
	SkipPaths        []string
	SkipContentTypes []string
}

// DefaultBodyLimitConfig mirrors the teacher's 4MB default.
func DefaultBodyLimitConfig() BodyLimitConfig {
	return BodyLimitConfig{MaxSize: 4 * 1024 * 1024, ErrorMessage: "request body too large"}
}

type bodyLimitPlugin struct {
	meridian.BasePlugin
	cfg BodyLimitConfig
}

// BodyLimit rejects requests whose body exceeds cfg.MaxSize with 413,
// skipping paths/content-types the caller exempted.
func BodyLimit(cfg BodyLimitConfig) meridian.Plugin {
	return &bodyLimitPlugin{cfg: cfg}
}

func (p *bodyLimitPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	for _, skip := range p.cfg.SkipPaths {
		if skip == req.Path {
			return meridian.Continue
		}
	}
	ct := req.Header.Get("Content-Type")
	for _, skip := range p.cfg.SkipContentTypes {
		if strings.Contains(ct, skip) {
			return meridian.Continue
		}
	}
	if p.cfg.MaxSize > 0 && int64(len(req.Body)) > p.cfg.MaxSize {
		errResp := meridian.NewResponse()
		errResp.Status = 413
		errResp.Header.Set("Content-Type", "application/json")
		msg := p.cfg.ErrorMessage
		if msg == "" {
			msg = "request body too large"
		}
		errResp.SetBody([]byte(`{"error":"` + msg + `"}`))
		return meridian.ShortCircuitWith(errResp)
	}
	return meridian.Continue
}
