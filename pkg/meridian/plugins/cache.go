package plugins

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/meridian-http/meridian"
	"github.com/valyala/bytebufferpool"
)

// CacheConfig configures the ETag/conditional-GET plugin, a trimmed-down
// descendant of fasthttpadapter.CacheEntry/MemoryStore (cache_middleware.go)
// that drops the full response cache store (spec.md's Non-goals exclude a
// response cache; see DESIGN.md) and keeps only the still-useful
// conditional-GET behavior: compute an ETag, honor If-None-Match with 304.
type CacheConfig struct {
	MaxAge int // seconds, written to Cache-Control
}

type cachePlugin struct {
	meridian.BasePlugin
	cfg CacheConfig
}

// Cache returns a Plugin that stamps GET/HEAD responses with an ETag
// derived from the body hash and, in the response phase, turns repeat
// requests carrying a matching If-None-Match into an empty 304. Uses bytebufferpool (as the teacher's
// cache_middleware.go does for its own buffers) to avoid allocating a fresh
// buffer per request for the hash input.
func Cache(cfg CacheConfig) meridian.Plugin {
	return &cachePlugin{cfg: cfg}
}

func (p *cachePlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	return meridian.Continue
}

func (p *cachePlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
	if req.Method != "GET" && req.Method != "HEAD" {
		return
	}
	if resp.Status != 200 {
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.Write(resp.BodyBytes())
	sum := md5.Sum(buf.B)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	resp.Header.Set("ETag", etag)
	if p.cfg.MaxAge > 0 {
		resp.Header.Set("Cache-Control", "max-age="+strconv.Itoa(p.cfg.MaxAge))
	}

	if req.Header.Get("If-None-Match") == etag {
		resp.Status = 304
		resp.Body = nil
	}
}
