package meridian

// HostDef is one entry of the route-definition input, keyed by host
// pattern (spec.md §3 "Route definition (input)"): an exact hostname, a
// "*.base" subdomain wildcard, or the literal "*" global fallback.
type HostDef struct {
	Pattern string

	// Locales, DefaultLocale, RootLocaleRedirect are the scope-level
	// options spec.md §3 lists at "the host top level". RootLocaleRedirect
	// defaults to true when Locales is non-empty (spec.md §4.5); set
	// RootLocaleRedirectSet to force an explicit false.
	Locales                []string
	DefaultLocale          string
	RootLocaleRedirect     bool
	RootLocaleRedirectSet  bool

	// Use is the scope-level inherited plugin list at the host root.
	Use []Plugin

	// useErr records a symbol that UseNamed could not resolve through a
	// PluginRegistry, surfaced as a ConfigError at Define time instead of
	// panicking out of the fluent builder (spec.md §4.6 "symbol
	// identifiers are resolved through the plugin registry").
	useErr error

	Routes []*PathDef
}

// PathDef is one path-fragment node in the input tree (spec.md §3 "Under
// each host the mapping is a tree of path fragments"). Fragment may
// contain multiple '/'-separated segments; a leading '/' is accepted and
// stripped at compile time.
type PathDef struct {
	Fragment string

	// Use is this scope's inherited-plugin-list contribution, merged with
	// the parent's per spec.md §4.1 ("concatenation followed by
	// de-duplication preserving first occurrence"). A nil slice with
	// UseReset true resets the inherited list to empty.
	Use      []Plugin
	UseReset bool
	useErr   error

	Methods map[string]*MethodDef

	Children []*PathDef
}

// MethodDef is a route config under an HTTP-method symbol (spec.md §3
// "A method key's value is a route config").
type MethodDef struct {
	To          HandlerFunc
	As          string
	Use         []Plugin
	useErr      error
	Constraints map[string]string // param name -> regex source
	Localized   map[string]string // locale -> relative path fragment
	Sitemap     *SitemapMeta
	Redirect    *RedirectMeta
}
