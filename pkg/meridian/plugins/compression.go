package plugins

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/meridian-http/meridian"
)

// CompressionConfig mirrors fasthttpadapter.CompressionConfig
// (compression_middleware.go), trimmed to the gzip/brotli response-phase
// concern: response-phase only, since compression needs the final body.
type CompressionConfig struct {
	Level               int
	MinLength           int
	ExcludeContentTypes []string
	EnableBrotli        bool
}

// DefaultCompressionConfig mirrors the teacher's 1KB minimum, default level.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{Level: -1, MinLength: 1024, EnableBrotli: true}
}

type compressionPlugin struct {
	meridian.BasePlugin
	cfg CompressionConfig
}

// Compression returns a Plugin that gzip- or brotli-encodes the response
// body in CallResponse, picking the codec from the request's Accept-Encoding
// header (brotli preferred when both the client and cfg allow it, grounded
// on klauspost/compress for gzip and andybalholm/brotli for brotli, the
// same two libraries the teacher's compression_middleware.go wires).
func Compression(cfg CompressionConfig) meridian.Plugin {
	return &compressionPlugin{cfg: cfg}
}

func (p *compressionPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	return meridian.Continue
}

func (p *compressionPlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
	body := resp.BodyBytes()
	if len(body) < p.cfg.MinLength {
		return
	}
	ct := resp.Header.Get("Content-Type")
	for _, excl := range p.cfg.ExcludeContentTypes {
		if strings.Contains(ct, excl) {
			return
		}
	}
	accept := req.Header.Get("Accept-Encoding")

	switch {
	case p.cfg.EnableBrotli && strings.Contains(accept, "br"):
		var buf bytes.Buffer
		level := p.cfg.Level
		if level < 0 || level > 11 {
			level = brotli.DefaultCompression
		}
		w := brotli.NewWriterLevel(&buf, level)
		if _, err := w.Write(body); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
		resp.SetBody(buf.Bytes())
		resp.Header.Set("Content-Encoding", "br")
	case strings.Contains(accept, "gzip"):
		var buf bytes.Buffer
		level := p.cfg.Level
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			level = gzip.DefaultCompression
		}
		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return
		}
		if _, err := w.Write(body); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
		resp.SetBody(buf.Bytes())
		resp.Header.Set("Content-Encoding", "gzip")
	default:
		return
	}

	resp.Header.Set("Content-Length", strconv.Itoa(len(resp.BodyBytes())))
	resp.Header.Set("Vary", "Accept-Encoding")
}
