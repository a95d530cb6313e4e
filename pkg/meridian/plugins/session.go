package plugins

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/meridian-http/meridian"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/crypto/hkdf"
)

// SessionAttr is the Request.Attr key a handler reads/writes session data
// through (mirrors the teacher's Context.Cookie/SetCookie pair in
// context.go, generalized from a single string value to an arbitrary
// map[string]string the handler mutates in place).
const SessionAttr = "session"

// Session is the per-request mutable session bag. The plugin's
// CallResponse re-encodes it into the response cookie when Set or Delete
// has changed it.
type Session struct {
	Values  map[string]string
	changed bool
}

// Get returns a session value, "" if absent.
func (s *Session) Get(key string) string { return s.Values[key] }

// Set stores a session value, marking the session dirty so it gets
// re-signed and re-sent on the response.
func (s *Session) Set(key, value string) {
	s.Values[key] = value
	s.changed = true
}

// Delete removes a session value.
func (s *Session) Delete(key string) {
	delete(s.Values, key)
	s.changed = true
}

// SessionConfig controls cookie naming and signing.
type SessionConfig struct {
	Secret     []byte
	CookieName string // default "_session"
	MaxAge     int    // seconds, 0 means session cookie
}

// DefaultSessionConfig mirrors CSRF's cookie defaults for consistency.
func DefaultSessionConfig(secret []byte) SessionConfig {
	return SessionConfig{Secret: secret, CookieName: "_session"}
}

// Session returns a Plugin that reads a signed session cookie into a
// *Session stored under SessionAttr on Call, and re-signs/re-sends it on
// CallResponse if the handler mutated it. Grounded on the teacher's
// Context.Cookie/SetCookie, reusing the HKDF-derived HMAC signer pattern
// from CSRFGenerator/CSRFProtection rather than inventing a second scheme.
func Session(cfg SessionConfig) meridian.Plugin {
	if cfg.CookieName == "" {
		cfg.CookieName = "_session"
	}
	return &sessionPlugin{signer: newSessionSigner(cfg.Secret), cfg: cfg}
}

type sessionPlugin struct {
	signer *sessionSigner
	cfg    SessionConfig
}

func (p *sessionPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	sess := &Session{Values: make(map[string]string)}
	if raw := cookieValue(req, p.cfg.CookieName); raw != "" {
		if values, ok := p.signer.decode(raw); ok {
			sess.Values = values
		}
	}
	req.SetAttr(SessionAttr, sess)
	return meridian.Continue
}

func (p *sessionPlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
	sess, _ := req.Attr(SessionAttr).(*Session)
	if sess == nil || !sess.changed {
		return
	}
	encoded := p.signer.encode(sess.Values)
	cookie := p.cfg.CookieName + "=" + encoded + "; Path=/; HttpOnly; SameSite=Lax"
	if p.cfg.MaxAge > 0 {
		cookie += "; Max-Age=" + strconv.Itoa(p.cfg.MaxAge)
	}
	resp.Header.Set("Set-Cookie", cookie)
}

// cookieValue extracts one cookie's value from the raw Cookie header, the
// way the teacher's Context.Cookie read off fasthttp's own cookie jar.
func cookieValue(req *meridian.Request, name string) string {
	header := req.Header.Get("Cookie")
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		k, v, ok := strings.Cut(part, "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}

var sessionJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type sessionSigner struct {
	key []byte
}

func newSessionSigner(secret []byte) *sessionSigner {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, secret, nil, []byte("meridian-session"))
	kdf.Read(key)
	return &sessionSigner{key: key}
}

func (s *sessionSigner) encode(values map[string]string) string {
	payload, _ := sessionJSON.Marshal(values)
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	sig := mac.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (s *sessionSigner) decode(token string) (map[string]string, bool) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, false
	}
	var values map[string]string
	if err := sessionJSON.Unmarshal(payload, &values); err != nil {
		return nil, false
	}
	return values, true
}
