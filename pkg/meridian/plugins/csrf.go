package plugins

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/meridian-http/meridian"
	"golang.org/x/crypto/hkdf"
)

// CSRFTokenAttr is where the generator stores the per-request token for a
// handler to render into a form/meta tag (mirrors the teacher's ContextKey
// convention in csrf_middleware.go).
const CSRFTokenAttr = "csrf_token"

// CSRFConfig mirrors the signing-relevant subset of fasthttpadapter.CSRFOptions.
type CSRFConfig struct {
	Secret      []byte
	HeaderName  string // default "X-CSRF-Token"
	CookieName  string // default "_csrf"
	SafeMethods []string
}

// DefaultCSRFConfig mirrors the teacher's TokenLookup/CookieName defaults.
func DefaultCSRFConfig(secret []byte) CSRFConfig {
	return CSRFConfig{
		Secret:      secret,
		HeaderName:  "X-CSRF-Token",
		CookieName:  "_csrf",
		SafeMethods: []string{"GET", "HEAD", "OPTIONS"},
	}
}

// csrfSigner derives one signing key from cfg.Secret via HKDF
// (golang.org/x/crypto/hkdf); each half of the pair below builds its own
// signer, and the same secret yields the same key in both — grounded on the teacher's Secret field in CSRFOptions,
// generalized from a raw HMAC key to an HKDF-derived one since a single
// long-lived secret should never be used directly as a MAC key across many
// tokens.
type csrfSigner struct {
	key []byte
}

func newCSRFSigner(secret []byte) *csrfSigner {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, secret, nil, []byte("meridian-csrf"))
	io.ReadFull(kdf, key)
	return &csrfSigner{key: key}
}

func (s *csrfSigner) sign(nonce []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(nonce)
	return mac.Sum(nil)
}

func (s *csrfSigner) newToken() string {
	nonce := make([]byte, 18)
	rand.Read(nonce)
	sig := s.sign(nonce)
	token := append(nonce, sig...)
	return base64.RawURLEncoding.EncodeToString(token)
}

func (s *csrfSigner) verify(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != 18+32 {
		return false
	}
	nonce, sig := raw[:18], raw[18:]
	return hmac.Equal(sig, s.sign(nonce))
}

type csrfGeneratorPlugin struct {
	meridian.BasePlugin
	signer *csrfSigner
	cookie string
}

// CSRFGenerator is the first half of the pair (spec.md §4.1/§4.6 "composite
// plugin registers two independent Plugin values under one registry
// symbol"): it mints a token on every request and stores it under
// CSRFTokenAttr and a Set-Cookie header, for a handler or template to embed
// in the next form.
func CSRFGenerator(cfg CSRFConfig) meridian.Plugin {
	return &csrfGeneratorPlugin{signer: newCSRFSigner(cfg.Secret), cookie: cfg.CookieName}
}

func (p *csrfGeneratorPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	token := p.signer.newToken()
	req.SetAttr(CSRFTokenAttr, token)
	resp.Header.Set("Set-Cookie", p.cookie+"="+token+"; Path=/; HttpOnly; SameSite=Lax")
	return meridian.Continue
}

type csrfProtectionPlugin struct {
	meridian.BasePlugin
	signer *csrfSigner
	header string
	safe   map[string]bool
}

// CSRFProtection is the second half of the pair: for any method not in
// cfg.SafeMethods it requires a valid token on cfg.HeaderName, rejecting
// with 403 otherwise.
func CSRFProtection(cfg CSRFConfig) meridian.Plugin {
	safe := make(map[string]bool, len(cfg.SafeMethods))
	for _, m := range cfg.SafeMethods {
		safe[m] = true
	}
	return &csrfProtectionPlugin{signer: newCSRFSigner(cfg.Secret), header: cfg.HeaderName, safe: safe}
}

func (p *csrfProtectionPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	if p.safe[req.Method] {
		return meridian.Continue
	}
	token := req.Header.Get(p.header)
	if token == "" || !p.signer.verify(token) {
		errResp := meridian.NewResponse()
		errResp.Status = 403
		errResp.Header.Set("Content-Type", "application/json")
		errResp.SetBody([]byte(`{"error":"invalid or missing csrf token"}`))
		return meridian.ShortCircuitWith(errResp)
	}
	return meridian.Continue
}
