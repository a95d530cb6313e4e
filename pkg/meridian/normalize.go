package meridian

import (
	"net/url"
	"strings"
)

// NormalizeResult is what Normalize returns: either a path ready for
// matching, or a redirect that short-circuits matching entirely (spec.md
// §4.5 "redirect: ... matching is skipped").
//
// Path is lowercased, for matching and host comparison. CasePath is the
// same path with its original case preserved, split in lockstep with Path
// so the matcher can capture parameter values from it (spec.md §9's
// resolution of the case-handling open question).
type NormalizeResult struct {
	Path     string
	CasePath string
	Redirect *Response
}

// Normalize implements spec.md §4.5's five-step path normalization and
// trailing-slash policy, grounded on the teacher's RouterConfig
// (StrictSlash/RedirectSlash/UseEscapedPath fields in the old router.go)
// generalized to the three-way strict/ignore/redirect policy.
func Normalize(raw string, cfg Config) NormalizeResult {
	path := raw
	if path == "" {
		path = "/"
	}

	path = collapseSlashes(path)

	if path != "/" && strings.HasSuffix(path, "/") {
		switch cfg.TrailingSlash {
		case TrailingSlashIgnore:
			path = strings.TrimSuffix(path, "/")
		case TrailingSlashRedirect:
			stripped := strings.TrimSuffix(path, "/")
			status := cfg.RedirectStatus
			if status == 0 {
				status = 301
			}
			return NormalizeResult{Redirect: Redirect(status, stripped)}
		case TrailingSlashStrict:
			// preserved as-is
		}
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	return NormalizeResult{Path: strings.ToLower(path), CasePath: path}
}

func collapseSlashes(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	lastWasSlash := false
	for _, r := range path {
		if r == '/' {
			if lastWasSlash {
				continue
			}
			lastWasSlash = true
		} else {
			lastWasSlash = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "/"
	}
	out := b.String()
	if out[0] != '/' {
		out = "/" + out
	}
	return out
}

// RootLocaleRedirect implements spec.md §4.5's "Root-locale redirect": a
// request for "/" on a host with locales and RootLocaleRedirect != false
// is answered with a 302 to "/<default_locale>/" before matching.
func RootLocaleRedirect(path string, domain *DomainConfig) *Response {
	if domain == nil || !domain.RootLocaleRedirect || path != "/" {
		return nil
	}
	return Redirect(302, "/"+domain.DefaultLocale+"/")
}
