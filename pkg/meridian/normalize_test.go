package meridian

import "testing"

func TestNormalizeCollapsesDuplicateSlashes(t *testing.T) {
	res := Normalize("/foo//bar///baz", DefaultConfig())
	if res.Path != "/foo/bar/baz" {
		t.Errorf("got %q, want /foo/bar/baz", res.Path)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	once := Normalize("/Foo//Bar/", cfg)
	twice := Normalize(once.Path, cfg)
	if once.Path != twice.Path {
		t.Errorf("normalize is not idempotent: %q != %q", once.Path, twice.Path)
	}
}

func TestNormalizeTrailingSlashIgnorePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrailingSlash = TrailingSlashIgnore
	res := Normalize("/foo/", cfg)
	if res.Redirect != nil {
		t.Fatalf("ignore policy should not redirect")
	}
	if res.Path != "/foo" {
		t.Errorf("got %q, want /foo", res.Path)
	}
}

func TestNormalizeTrailingSlashRedirectPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrailingSlash = TrailingSlashRedirect
	res := Normalize("/foo/", cfg)
	if res.Redirect == nil {
		t.Fatalf("expected a redirect response")
	}
	if res.Redirect.Status != 301 {
		t.Errorf("got status %d, want 301", res.Redirect.Status)
	}
	if res.Redirect.Header.Get("Location") != "/foo" {
		t.Errorf("got Location %q, want /foo", res.Redirect.Header.Get("Location"))
	}
}

func TestNormalizeTrailingSlashStrictPolicyPreservesSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrailingSlash = TrailingSlashStrict
	res := Normalize("/foo/", cfg)
	if res.Redirect != nil {
		t.Fatalf("strict policy should not redirect")
	}
	if res.Path != "/foo/" {
		t.Errorf("got %q, want /foo/ preserved", res.Path)
	}
}

func TestNormalizeLowercasesPathButPreservesCasePath(t *testing.T) {
	res := Normalize("/Users/ADA", DefaultConfig())
	if res.Path != "/users/ada" {
		t.Errorf("got Path %q, want lowercased", res.Path)
	}
	if res.CasePath != "/Users/ADA" {
		t.Errorf("got CasePath %q, want original case preserved", res.CasePath)
	}
}

func TestRootLocaleRedirectOnlyFiresForRootPath(t *testing.T) {
	domain := &DomainConfig{Locales: []string{"en", "fr"}, DefaultLocale: "en", RootLocaleRedirect: true}
	if resp := RootLocaleRedirect("/about", domain); resp != nil {
		t.Fatalf("expected no redirect for a non-root path")
	}
	resp := RootLocaleRedirect("/", domain)
	if resp == nil {
		t.Fatalf("expected a redirect for the root path")
	}
	if resp.Status != 302 {
		t.Errorf("got status %d, want 302", resp.Status)
	}
	if resp.Header.Get("Location") != "/en/" {
		t.Errorf("got Location %q, want /en/", resp.Header.Get("Location"))
	}
}

func TestRootLocaleRedirectDisabledByFlag(t *testing.T) {
	domain := &DomainConfig{Locales: []string{"en", "fr"}, DefaultLocale: "en", RootLocaleRedirect: false}
	if resp := RootLocaleRedirect("/", domain); resp != nil {
		t.Fatalf("expected no redirect when RootLocaleRedirect is false")
	}
}

func TestNormalizeDecodesPercentEncoding(t *testing.T) {
	res := Normalize("/caf%C3%A9", DefaultConfig())
	if res.Path != "/café" {
		t.Errorf("got %q, want decoded and lowercased /café", res.Path)
	}
}
