package plugins

import (
	"context"

	"github.com/meridian-http/meridian"
)

// HealthCheck returns a Plugin that short-circuits requests to path with a
// 200 "ok" body, letting it be registered ahead of auth/rate-limit plugins
// on whatever route the caller mounts it on (the teacher's logger_middleware.go
// SkipPaths default already singles out "/health" as a convention this
// plugin turns into an actual endpoint rather than just a skip rule).
func HealthCheck(path string) meridian.Plugin {
	return &healthCheckPlugin{path: path}
}

type healthCheckPlugin struct {
	meridian.BasePlugin
	path string
}

func (p *healthCheckPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	if req.Path != p.path {
		return meridian.Continue
	}
	resp.Status = 200
	resp.Header.Set("Content-Type", "application/json")
	resp.SetBody([]byte(`{"status":"ok"}`))
	return meridian.ShortCircuitWith(resp)
}
