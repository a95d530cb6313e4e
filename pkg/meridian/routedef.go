package meridian

import "fmt"

// resolveNamed expands names through registry (spec.md §4.6), returning a
// ConfigError naming the first symbol that has nothing registered under it.
func resolveNamed(registry *PluginRegistry, names []string) ([]Plugin, error) {
	var out []Plugin
	for _, name := range names {
		plugins, ok := registry.Resolve(name)
		if !ok {
			return nil, NewConfigError(fmt.Sprintf("use: no plugin registered under name %q", name))
		}
		out = append(out, plugins...)
	}
	return out, nil
}

// HandlerFunc is the contract a route's handler implements (spec.md §4.4
// "Handler invocation"). Unlike the teacher's single (*Context) error
// signature, a handler here returns a Result — the sum type that folds
// into a Response at dispatch time — because the core itself has no live
// transport context to hand the handler (spec.md §1: transport is out of
// scope).
type HandlerFunc func(req *Request) Result

// RouteMeta is the compiled record for one (host, method, pattern) triple
// (spec.md §3 "Route metadata"), keyed by "domain:METHOD:pattern".
type RouteMeta struct {
	Domain      string
	Method      string
	Name        string
	Handler     HandlerFunc
	Use         []Plugin
	Pattern     string
	ParamNames  []string
	Segments    []string
	Constraints constraintSet
	Locale      string
	Localized   bool

	Sitemap  *SitemapMeta
	Redirect *RedirectMeta
}

// SitemapMeta holds sitemap.org-schema metadata collected off a route
// (SPEC_FULL.md §3 "Sitemap/redirect registries").
type SitemapMeta struct {
	ChangeFreq string
	Priority   float64
}

// RedirectMeta records legacy paths that should 301 to this route
// (SPEC_FULL.md §3).
type RedirectMeta struct {
	From []string
}

// metaKey builds the metadata-table key spec.md §3 specifies.
func metaKey(domain, method, pattern string) string {
	return domain + ":" + method + ":" + pattern
}

// DomainConfig is the per-host record spec.md §3 calls "domain config":
// locales, default locale, and the root-locale-redirect flag.
type DomainConfig struct {
	Locales            []string
	DefaultLocale      string
	RootLocaleRedirect bool // default true; see spec.md §4.5
}

// hasLocale reports whether tag is among the domain's registered locales.
func (dc *DomainConfig) hasLocale(tag string) bool {
	for _, l := range dc.Locales {
		if l == tag {
			return true
		}
	}
	return false
}

// RouteOption configures a route at registration time, generalizing the
// teacher's RouteOption (router.go: WithName, WithMiddleware,
// WithConstraint, WithIntConstraint, ...) to the new metadata shape.
type RouteOption func(*routeRegistration)

type routeRegistration struct {
	name        string
	use         []Plugin
	useErr      error
	constraints map[string]string // name -> regex source
	localized   map[string]string // locale -> relative path fragment
	sitemap     *SitemapMeta
	redirect    *RedirectMeta
}

// As sets the route's globally-unique name (spec.md §3 "as").
func As(name string) RouteOption {
	return func(r *routeRegistration) { r.name = name }
}

// Use prepends plugins to this route's effective pipeline (spec.md §3
// "use"), resolved/merged with inherited scope plugins at registration.
func Use(plugins ...Plugin) RouteOption {
	return func(r *routeRegistration) { r.use = append(r.use, plugins...) }
}

// UseNamed is Use's symbolic-name counterpart (spec.md §4.6): it resolves
// each name through registry and appends the result, recording the first
// unresolved name as a ConfigError surfaced from Define.
func UseNamed(registry *PluginRegistry, names ...string) RouteOption {
	return func(r *routeRegistration) {
		plugins, err := resolveNamed(registry, names)
		if err != nil {
			r.useErr = err
			return
		}
		r.use = append(r.use, plugins...)
	}
}

// Constraint attaches a per-parameter regex (spec.md §3 "constraints").
func Constraint(param, pattern string) RouteOption {
	return func(r *routeRegistration) {
		if r.constraints == nil {
			r.constraints = make(map[string]string)
		}
		r.constraints[param] = pattern
	}
}

// Localized attaches locale-specific path fragments (spec.md §3
// "localized"); keys are locale tags, values are relative paths without
// the locale prefix.
func Localized(variants map[string]string) RouteOption {
	return func(r *routeRegistration) { r.localized = variants }
}

// Sitemap attaches sitemap metadata (SPEC_FULL.md §3).
func Sitemap(changeFreq string, priority float64) RouteOption {
	return func(r *routeRegistration) {
		r.sitemap = &SitemapMeta{ChangeFreq: changeFreq, Priority: priority}
	}
}

// RedirectFrom records legacy paths that 301 to this route (SPEC_FULL.md
// §3).
func RedirectFrom(paths ...string) RouteOption {
	return func(r *routeRegistration) {
		if r.redirect == nil {
			r.redirect = &RedirectMeta{}
		}
		r.redirect.From = append(r.redirect.From, paths...)
	}
}
