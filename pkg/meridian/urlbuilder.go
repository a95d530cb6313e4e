package meridian

import (
	"net/url"
	"sort"
	"strings"
)

// URLBuilder generates URLs from named routes, a domain, and parameters
// (spec.md §4.3), grounded on the teacher's RouteInfo/Route.Params
// bookkeeping (old router.go) plus other_examples/goliatone-go-urlkit's
// named-route generation shape for the locale-fallback case.
type URLBuilder struct {
	router *Router
	config Config
}

// NewURLBuilder builds a URLBuilder bound to router.
func NewURLBuilder(router *Router, config Config) *URLBuilder {
	return &URLBuilder{router: router, config: config}
}

// Path implements spec.md §4.3 "path(name, host?, **params, locale?)".
// host, if empty, falls back to req.Domain() when req is non-nil; there is
// no router-wide default host, so with neither it stays empty. locale, if
// empty, falls back to the host's default locale for localized routes.
func (b *URLBuilder) Path(req *Request, name, host, locale string, params map[string]string) (string, error) {
	if host == "" && req != nil {
		host = req.Domain()
	}

	rm, ok := b.router.lookupName(host, name)
	if !ok {
		return "", NewURLBuildError("unknown route name: " + name)
	}

	target := rm
	if rm.Localized {
		domain := b.router.DomainConfigFor(host)
		useLocale := locale
		if useLocale == "" {
			if domain == nil {
				return "", NewURLBuildError("route " + name + " is localized but host " + host + " has no default locale")
			}
			useLocale = domain.DefaultLocale
		}
		if domain == nil || !domain.hasLocale(useLocale) {
			return "", NewURLBuildError("unknown locale " + useLocale + " for route " + name)
		}
		derived, ok := b.router.lookupName(host, name+"_"+useLocale)
		if !ok {
			return "", NewURLBuildError("no localized variant " + name + "_" + useLocale + " registered")
		}
		target = derived
	}

	return buildFromSegments(target.Segments, params)
}

// buildFromSegments implements spec.md §4.3 "Building from segments":
// literal kept verbatim, :x consumes params[x] (percent-encoded),
// *x consumes params[x] verbatim (no '/' encoding), leftover params
// become an ordered query string.
func buildFromSegments(segs []string, params map[string]string) (string, error) {
	consumed := make(map[string]bool, len(params))
	var b strings.Builder

	for _, seg := range segs {
		b.WriteByte('/')
		switch kind, name := classifySegment(seg); kind {
		case segParam:
			value, ok := params[name]
			if !ok {
				return "", NewURLBuildError("missing required parameter: " + name)
			}
			b.WriteString(url.PathEscape(value))
			consumed[name] = true
		case segWildcard:
			value, ok := params[name]
			if !ok {
				return "", NewURLBuildError("missing required parameter: " + name)
			}
			b.WriteString(value)
			consumed[name] = true
		default:
			b.WriteString(seg)
		}
	}

	path := b.String()
	if path == "" {
		path = "/"
	}

	var leftoverKeys []string
	for k := range params {
		if !consumed[k] {
			leftoverKeys = append(leftoverKeys, k)
		}
	}
	if len(leftoverKeys) == 0 {
		return path, nil
	}

	sort.Strings(leftoverKeys)
	q := url.Values{}
	for _, k := range leftoverKeys {
		q.Set(k, params[k])
	}
	return path + "?" + q.Encode(), nil
}

// URL implements spec.md §4.3 "url(…) wraps path with scheme + host;
// protocol defaults to https".
func (b *URLBuilder) URL(req *Request, name, host, locale, scheme string, params map[string]string) (string, error) {
	if host == "" && req != nil {
		host = req.Domain()
	}
	path, err := b.Path(req, name, host, locale, params)
	if err != nil {
		return "", err
	}
	if scheme == "" {
		scheme = b.config.DefaultScheme
		if scheme == "" {
			scheme = "https"
		}
	}
	return scheme + "://" + host + path, nil
}
