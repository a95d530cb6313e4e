package meridian

import (
	"strings"
	"testing"
)

func TestWriteSitemapIncludesOnlyTaggedNonLocalizedRoutes(t *testing.T) {
	site := Host("www.example.com")
	site.Path("about").Get(okHandler, As("about"), Sitemap("monthly", 0.5))
	site.Path("login").Get(okHandler, As("login"))
	r := buildTestRouter(t, site.Build())

	var buf strings.Builder
	if err := r.WriteSitemap(&buf, "https", "www.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "https://www.example.com/about") {
		t.Errorf("expected the tagged /about route in the sitemap, got:\n%s", out)
	}
	if strings.Contains(out, "/login") {
		t.Errorf("expected the untagged /login route to be excluded, got:\n%s", out)
	}
	if !strings.Contains(out, "monthly") {
		t.Errorf("expected changefreq to be serialized, got:\n%s", out)
	}
}

func TestRedirectsCollectsLegacyPaths(t *testing.T) {
	site := Host("www.example.com")
	site.Path("about").Get(okHandler, As("about"), RedirectFrom("/old-about", "/company"))
	r := buildTestRouter(t, site.Build())

	redirects := r.Redirects("www.example.com")
	if redirects["/old-about"] != "/about" {
		t.Errorf("got %q, want /about", redirects["/old-about"])
	}
	if redirects["/company"] != "/about" {
		t.Errorf("got %q, want /about", redirects["/company"])
	}
}
