package plugins

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/meridian-http/meridian"
)

func newTestRequestPath(method, path string, header meridian.Header, body []byte) *meridian.Request {
	if header == nil {
		header = make(meridian.Header)
	}
	return meridian.NewRequest(context.Background(), method, "example.com", path, "", header, body)
}

func TestBodyLimitRejectsOversizedBody(t *testing.T) {
	p := BodyLimit(BodyLimitConfig{MaxSize: 4, ErrorMessage: "too big"})
	req := newTestRequestPath("POST", "/upload", nil, []byte("way too much data"))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatal("expected an oversized body to short-circuit")
	}
	if resp.Status != 413 {
		t.Errorf("got status %d, want 413", resp.Status)
	}
	if !strings.Contains(string(resp.BodyBytes()), "too big") {
		t.Errorf("expected the configured error message in the body, got %s", resp.BodyBytes())
	}
}

func TestBodyLimitAllowsBodyWithinLimit(t *testing.T) {
	p := BodyLimit(BodyLimitConfig{MaxSize: 1024})
	req := newTestRequestPath("POST", "/upload", nil, []byte("small"))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatal("expected a body within the limit to continue")
	}
}

func TestBodyLimitSkipsExemptedPath(t *testing.T) {
	p := BodyLimit(BodyLimitConfig{MaxSize: 1, SkipPaths: []string{"/upload"}})
	req := newTestRequestPath("POST", "/upload", nil, []byte("this would normally be too big"))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatal("expected a skip-listed path to bypass the limit entirely")
	}
}

func TestBodyLimitSkipsExemptedContentType(t *testing.T) {
	p := BodyLimit(BodyLimitConfig{MaxSize: 1, SkipContentTypes: []string{"multipart/form-data"}})
	req := newTestRequestPath("POST", "/upload", meridian.Header{"Content-Type": "multipart/form-data; boundary=x"}, []byte("big payload here"))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatal("expected an exempted content type to bypass the limit")
	}
}

func TestCacheStampsETagAndHonors304(t *testing.T) {
	p := Cache(CacheConfig{MaxAge: 60})
	req := newTestRequestPath("GET", "/page", nil, nil)
	resp := meridian.NewResponse()
	resp.Status = 200
	resp.SetBody([]byte("hello world"))

	p.CallResponse(context.Background(), req, resp)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag to be stamped")
	}
	if resp.Header.Get("Cache-Control") != "max-age=60" {
		t.Errorf("got Cache-Control %q, want max-age=60", resp.Header.Get("Cache-Control"))
	}

	req2 := newTestRequestPath("GET", "/page", meridian.Header{"If-None-Match": etag}, nil)
	resp2 := meridian.NewResponse()
	resp2.Status = 200
	resp2.SetBody([]byte("hello world"))
	p.CallResponse(context.Background(), req2, resp2)
	if resp2.Status != 304 {
		t.Errorf("got status %d, want 304 on a matching If-None-Match", resp2.Status)
	}
	if len(resp2.BodyBytes()) != 0 {
		t.Errorf("expected an empty body on 304, got %q", resp2.BodyBytes())
	}
}

func TestCacheSkipsNonGetMethods(t *testing.T) {
	p := Cache(CacheConfig{})
	req := newTestRequestPath("POST", "/page", nil, nil)
	resp := meridian.NewResponse()
	resp.Status = 200
	resp.SetBody([]byte("hello"))

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("ETag") != "" {
		t.Error("expected no ETag to be stamped for a POST response")
	}
}

func TestCompressionGzipsWhenAcceptedAndLongEnough(t *testing.T) {
	p := Compression(CompressionConfig{Level: -1, MinLength: 1})
	req := newTestRequestPath("GET", "/page", meridian.Header{"Accept-Encoding": "gzip"}, nil)
	resp := meridian.NewResponse()
	resp.SetBody([]byte(strings.Repeat("a", 100)))

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Errorf("got Content-Encoding %q, want gzip", resp.Header.Get("Content-Encoding"))
	}
	if resp.Header.Get("Vary") != "Accept-Encoding" {
		t.Error("expected a Vary header to be set")
	}
}

func TestCompressionSkipsShortBody(t *testing.T) {
	p := Compression(CompressionConfig{MinLength: 1024})
	req := newTestRequestPath("GET", "/page", meridian.Header{"Accept-Encoding": "gzip"}, nil)
	resp := meridian.NewResponse()
	resp.SetBody([]byte("short"))

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("Content-Encoding") != "" {
		t.Error("expected a body under MinLength to be left uncompressed")
	}
}

func TestCompressionPrefersBrotliWhenEnabledAndAccepted(t *testing.T) {
	p := Compression(CompressionConfig{MinLength: 1, EnableBrotli: true})
	req := newTestRequestPath("GET", "/page", meridian.Header{"Accept-Encoding": "br, gzip"}, nil)
	resp := meridian.NewResponse()
	resp.SetBody([]byte(strings.Repeat("b", 100)))

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("Content-Encoding") != "br" {
		t.Errorf("got Content-Encoding %q, want br", resp.Header.Get("Content-Encoding"))
	}
}

func TestHealthCheckShortCircuitsOnMatchingPath(t *testing.T) {
	p := HealthCheck("/healthz")
	req := newTestRequestPath("GET", "/healthz", nil, nil)
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatal("expected the health check path to short-circuit")
	}
	if resp.Status != 200 {
		t.Errorf("got status %d, want 200", resp.Status)
	}
}

func TestHealthCheckIgnoresOtherPaths(t *testing.T) {
	p := HealthCheck("/healthz")
	req := newTestRequestPath("GET", "/other", nil, nil)
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatal("expected a non-matching path to continue")
	}
}

func TestSecurityHeadersStampsDefaults(t *testing.T) {
	p := SecurityHeaders(DefaultSecurityHeadersConfig())
	req := newTestRequestPath("GET", "/page", nil, nil)
	resp := meridian.NewResponse()

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Errorf("got X-Frame-Options %q, want DENY", resp.Header.Get("X-Frame-Options"))
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected X-Content-Type-Options: nosniff")
	}
}

func TestSecurityHeadersDoesNotOverrideHandlerSetValue(t *testing.T) {
	p := SecurityHeaders(DefaultSecurityHeadersConfig())
	req := newTestRequestPath("GET", "/page", nil, nil)
	resp := meridian.NewResponse()
	resp.Header.Set("X-Frame-Options", "SAMEORIGIN")

	p.CallResponse(context.Background(), req, resp)
	if resp.Header.Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Errorf("expected the handler's own X-Frame-Options to survive, got %q", resp.Header.Get("X-Frame-Options"))
	}
}

type signupBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestJSONBodyStoresValidatedBodyUnderAttr(t *testing.T) {
	p := JSONBody(func() any { return &signupBody{} })
	req := newTestRequestPath("POST", "/signup", nil, []byte(`{"email":"a@example.com"}`))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatalf("expected a valid body to continue, got short-circuit with status %d", resp.Status)
	}
	stored, ok := req.Attr(BodyAttr).(*signupBody)
	if !ok {
		t.Fatal("expected the validated body to be stored under BodyAttr")
	}
	if stored.Email != "a@example.com" {
		t.Errorf("got email %q, want a@example.com", stored.Email)
	}
}

func TestJSONBodyRejectsFailedValidation(t *testing.T) {
	p := JSONBody(func() any { return &signupBody{} })
	req := newTestRequestPath("POST", "/signup", nil, []byte(`{"email":"not-an-email"}`))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatal("expected a validation failure to short-circuit")
	}
	if resp.Status != 400 {
		t.Errorf("got status %d, want 400", resp.Status)
	}
}

func TestLoggingEmitsOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	cfg := meridian.DefaultLoggerConfig()
	cfg.Output = &buf
	p := Logging(LoggingConfig{Logger: meridian.NewLogger(cfg)})

	req := newTestRequestPath("GET", "/items", nil, nil)
	resp := meridian.NewResponse()
	resp.Status = 200

	p.Call(context.Background(), req, resp)
	p.CallResponse(context.Background(), req, resp)

	out := buf.String()
	if !strings.Contains(out, `"path":"/items"`) {
		t.Errorf("expected the request path in the log line, got: %s", out)
	}
	if !strings.Contains(out, `"status":200`) {
		t.Errorf("expected the response status in the log line, got: %s", out)
	}
}

func TestLoggingSkipsConfiguredPaths(t *testing.T) {
	var buf bytes.Buffer
	cfg := meridian.DefaultLoggerConfig()
	cfg.Output = &buf
	p := Logging(LoggingConfig{Logger: meridian.NewLogger(cfg), SkipPaths: []string{"/healthz"}})

	req := newTestRequestPath("GET", "/healthz", nil, nil)
	resp := meridian.NewResponse()
	resp.Status = 200

	p.Call(context.Background(), req, resp)
	p.CallResponse(context.Background(), req, resp)

	if buf.Len() != 0 {
		t.Errorf("expected a skip-listed path to produce no log line, got: %s", buf.String())
	}
}

func TestJSONBodyRejectsMalformedJSON(t *testing.T) {
	p := JSONBody(func() any { return &signupBody{} })
	req := newTestRequestPath("POST", "/signup", nil, []byte(`{not json`))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatal("expected malformed JSON to short-circuit")
	}
	if resp.Status != 400 {
		t.Errorf("got status %d, want 400", resp.Status)
	}
}
