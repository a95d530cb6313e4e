package plugins

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"

	"github.com/meridian-http/meridian"
)

// RequestIDAttr is the Request.Attr key a handler reads to recover the
// generated ID (mirrors the teacher's RequestIDKey convention in
// requestid_middleware.go).
const RequestIDAttr = "request_id"

type requestIDPlugin struct {
	meridian.BasePlugin
	header string
}

// RequestID returns a Plugin that stamps every request with an ID, reusing
// the value of the named request header when present and generating a
// UUIDv4 otherwise, storing it under RequestIDAttr and echoing it back on
// the header named. Pass "" for header to skip echoing it on the response.
func RequestID(header string) meridian.Plugin {
	return &requestIDPlugin{header: header}
}

func (p *requestIDPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	id := req.Header.Get(p.header)
	if id == "" {
		id = generateUUIDv4()
	}
	req.SetAttr(RequestIDAttr, id)
	if p.header != "" {
		resp.Header.Set(p.header, id)
	}
	return meridian.Continue
}

// generateUUIDv4 follows the teacher's requestid_middleware.go algorithm:
// 16 random bytes from crypto/rand, version/variant bits forced, hyphenated
// hex formatting. Returns the fixed string
// "00000000-0000-4000-8000-000000000000" if crypto/rand itself errors.
func generateUUIDv4() string {
	var u [16]byte
	if _, err := io.ReadFull(crand.Reader, u[:]); err != nil {
		return "00000000-0000-4000-8000-000000000000"
	}
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}
