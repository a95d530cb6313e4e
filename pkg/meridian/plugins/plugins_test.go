package plugins

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/meridian-http/meridian"
)

func newTestRequest(method string, header meridian.Header, body []byte) *meridian.Request {
	if header == nil {
		header = make(meridian.Header)
	}
	return meridian.NewRequest(context.Background(), method, "example.com", "/", "", header, body)
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	p := CORS(DefaultCORSConfig())
	req := newTestRequest("OPTIONS", meridian.Header{"Origin": "http://localhost"}, nil)
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatalf("expected OPTIONS preflight to short-circuit")
	}
	if resp.Status != 204 {
		t.Errorf("got status %d, want 204", resp.Status)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard origin to be echoed back")
	}
}

func TestCORSNonPreflightContinues(t *testing.T) {
	p := CORS(DefaultCORSConfig())
	req := newTestRequest("GET", meridian.Header{"Origin": "http://localhost"}, nil)
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if decision.ShortCircuit {
		t.Fatalf("expected a plain GET to continue")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("expected CORS headers on a non-preflight request too")
	}
}

func TestRateLimitRejectsAfterThreshold(t *testing.T) {
	p := RateLimit(RateLimitConfig{Requests: 2, Window: time.Hour})
	req := newTestRequest("GET", meridian.Header{"X-Real-IP": "10.0.0.1"}, nil)

	for i := 0; i < 2; i++ {
		resp := meridian.NewResponse()
		if decision := p.Call(context.Background(), req, resp); decision.ShortCircuit {
			t.Fatalf("request %d should not be rate limited yet", i)
		}
	}
	resp := meridian.NewResponse()
	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit {
		t.Fatalf("expected the third request within the window to be rejected")
	}
	if decision.Response.Status != 429 {
		t.Errorf("got status %d, want 429", decision.Response.Status)
	}
}

func TestCSRFGenerateThenVerifyRoundTrips(t *testing.T) {
	secret := []byte("a-long-enough-test-secret-value")
	gen := CSRFGenerator(DefaultCSRFConfig(secret))
	protect := CSRFProtection(DefaultCSRFConfig(secret))

	genReq := newTestRequest("GET", nil, nil)
	genResp := meridian.NewResponse()
	gen.Call(context.Background(), genReq, genResp)
	token, _ := genReq.Attr(CSRFTokenAttr).(string)
	if token == "" {
		t.Fatalf("expected CSRFGenerator to stash a token")
	}

	postReq := newTestRequest("POST", meridian.Header{"X-CSRF-Token": token}, nil)
	postResp := meridian.NewResponse()
	if decision := protect.Call(context.Background(), postReq, postResp); decision.ShortCircuit {
		t.Fatalf("expected a valid token to pass protection, got short-circuit status %d", decision.Response.Status)
	}

	tamperedReq := newTestRequest("POST", meridian.Header{"X-CSRF-Token": token + "x"}, nil)
	tamperedResp := meridian.NewResponse()
	decision := protect.Call(context.Background(), tamperedReq, tamperedResp)
	if !decision.ShortCircuit || decision.Response.Status != 403 {
		t.Fatalf("expected a tampered token to be rejected with 403")
	}
}

func TestCSRFSafeMethodsSkipVerification(t *testing.T) {
	protect := CSRFProtection(DefaultCSRFConfig([]byte("secret")))
	req := newTestRequest("GET", nil, nil)
	resp := meridian.NewResponse()
	if decision := protect.Call(context.Background(), req, resp); decision.ShortCircuit {
		t.Fatalf("expected GET to bypass CSRF verification entirely")
	}
}

func TestSessionRoundTripsThroughCookie(t *testing.T) {
	cfg := DefaultSessionConfig([]byte("session-secret-value-long-enough"))
	p := Session(cfg)

	req1 := newTestRequest("GET", nil, nil)
	resp1 := meridian.NewResponse()
	p.Call(context.Background(), req1, resp1)

	sess, _ := req1.Attr(SessionAttr).(*Session)
	if sess == nil {
		t.Fatalf("expected a session to be attached")
	}
	sess.Set("user_id", "42")
	p.CallResponse(context.Background(), req1, resp1)

	cookie := resp1.Header.Get("Set-Cookie")
	if cookie == "" {
		t.Fatalf("expected Set-Cookie to be written after a dirty session")
	}

	req2 := newTestRequest("GET", meridian.Header{"Cookie": cookieNameValue(cookie)}, nil)
	resp2 := meridian.NewResponse()
	p.Call(context.Background(), req2, resp2)
	sess2, _ := req2.Attr(SessionAttr).(*Session)
	if sess2 == nil || sess2.Get("user_id") != "42" {
		t.Fatalf("expected the session value to survive the cookie round trip, got %+v", sess2)
	}
}

// cookieNameValue strips a Set-Cookie header down to just "name=value" the
// way a browser would before sending it back as the Cookie request header.
func cookieNameValue(setCookie string) string {
	for i := 0; i < len(setCookie); i++ {
		if setCookie[i] == ';' {
			return setCookie[:i]
		}
	}
	return setCookie
}

func TestFlashMessagesAreReadOnce(t *testing.T) {
	sessCfg := DefaultSessionConfig([]byte("flash-secret-value-long-enough!!"))
	sessPlugin := Session(sessCfg)
	flashPlugin := FlashMessages()

	req1 := newTestRequest("GET", nil, nil)
	resp1 := meridian.NewResponse()
	sessPlugin.Call(context.Background(), req1, resp1)
	flashPlugin.Call(context.Background(), req1, resp1)

	flash, _ := req1.Attr(FlashAttr).(*Flash)
	flash.Add("saved successfully")
	flashPlugin.CallResponse(context.Background(), req1, resp1)
	sessPlugin.CallResponse(context.Background(), req1, resp1)

	cookie := resp1.Header.Get("Set-Cookie")
	if cookie == "" {
		t.Fatalf("expected flash to dirty the session and write a cookie")
	}

	req2 := newTestRequest("GET", meridian.Header{"Cookie": cookieNameValue(cookie)}, nil)
	resp2 := meridian.NewResponse()
	sessPlugin.Call(context.Background(), req2, resp2)
	flashPlugin.Call(context.Background(), req2, resp2)
	flash2, _ := req2.Attr(FlashAttr).(*Flash)
	if got := flash2.Get(); len(got) != 1 || got[0] != "saved successfully" {
		t.Fatalf("expected one queued flash message, got %v", got)
	}
	if got := flash2.Get(); len(got) != 0 {
		t.Fatalf("expected the second Get to come back empty, got %v", got)
	}
}

func TestMultipartFormPluginParsesFields(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "ada")
	fw, _ := w.CreateFormFile("avatar", "pic.png")
	fw.Write([]byte("fake-png-bytes"))
	w.Close()

	p := MultipartForm(nil)
	req := newTestRequest("POST", meridian.Header{"Content-Type": w.FormDataContentType()}, buf.Bytes())
	resp := meridian.NewResponse()

	if decision := p.Call(context.Background(), req, resp); decision.ShortCircuit {
		t.Fatalf("expected a well-formed multipart body to parse, got status %d", decision.Response.Status)
	}

	form, _ := req.Attr(MultipartFormAttr).(*meridian.MultipartForm)
	if form == nil {
		t.Fatalf("expected a parsed form on the request")
	}
	if len(form.Value["name"]) != 1 || form.Value["name"][0] != "ada" {
		t.Errorf("got name values %v, want [ada]", form.Value["name"])
	}
	files := form.File["avatar"]
	if len(files) != 1 || files[0].Filename != "pic.png" {
		t.Fatalf("expected one avatar file named pic.png, got %+v", files)
	}
}

func TestMultipartFormPluginRejectsBadContentType(t *testing.T) {
	p := MultipartForm(nil)
	req := newTestRequest("POST", meridian.Header{"Content-Type": "application/json"}, []byte(`{}`))
	resp := meridian.NewResponse()

	decision := p.Call(context.Background(), req, resp)
	if !decision.ShortCircuit || decision.Response.Status != 400 {
		t.Fatalf("expected a non-multipart content-type to be rejected with 400")
	}
}
