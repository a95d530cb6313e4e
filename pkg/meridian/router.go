package meridian

import "sync/atomic"

// Router is the top-level entry point: compiled per-host tries, the name
// registry, and a segment cache, generalized from the teacher's single
// Router+radix-tree (router.go) into the multi-host, locale-aware shape
// spec.md §3/§4 describes.
//
// After Define returns successfully, a Router is read-mostly: Match and
// the URL builder are pure lookups against an atomically published
// compiledState (spec.md §5 "the core is invoked concurrently from many
// tasks... readers need no locking").
type Router struct {
	state    atomic.Pointer[compiledState]
	segCache *segmentCache
	logger   *Logger
	config   Config
}

// NewRouter constructs an empty Router. Call Define before matching.
func NewRouter(config Config, logger *Logger) *Router {
	if logger == nil {
		logger = NewLogger(DefaultLoggerConfig())
	}
	return &Router{
		segCache: newSegmentCache(config.SegmentCacheMaxSize),
		logger:   logger,
		config:   config,
	}
}

// Define atomically replaces the trie, metadata, name registry, and
// segment cache (spec.md §3 "Lifecycle"). On a compilation error, the
// previously published tables are left intact — a failed Define never
// partially applies.
func (r *Router) Define(hosts ...*HostDef) error {
	state, err := compile(hosts, r.logger)
	if err != nil {
		return err
	}
	r.segCache.clear()
	r.state.Store(state)
	return nil
}

// RouteInfo is an introspection-friendly summary of one compiled route,
// generalizing the teacher's RouteInfo (router.go: Method, Pattern, Name,
// Params, HasConstraints, MiddlewareCount, Priority, Tags, IsMerged) to the
// multi-host, locale-aware metadata this core tracks in RouteMeta.
type RouteInfo struct {
	Domain         string
	Method         string
	Pattern        string
	Name           string
	ParamNames     []string
	HasConstraints bool
	PluginCount    int
	Locale         string
	Localized      bool
	HasSitemap     bool
	HasRedirect    bool
}

// RouteTable returns one RouteInfo per compiled (host, method, pattern)
// entry in the currently published table, the way the teacher's
// GetRouteInfo() walked r.routes. Intended for diagnostics and the
// meridian-routes CLI, not for anything on the request path: callers get a
// snapshot, not a live view.
func (r *Router) RouteTable() []*RouteInfo {
	state := r.state.Load()
	if state == nil {
		return nil
	}
	out := make([]*RouteInfo, 0, len(state.meta))
	for _, rm := range state.meta {
		out = append(out, &RouteInfo{
			Domain:         rm.Domain,
			Method:         rm.Method,
			Pattern:        rm.Pattern,
			Name:           rm.Name,
			ParamNames:     rm.ParamNames,
			HasConstraints: len(rm.Constraints) > 0,
			PluginCount:    len(rm.Use),
			Locale:         rm.Locale,
			Localized:      rm.Localized,
			HasSitemap:     rm.Sitemap != nil,
			HasRedirect:    rm.Redirect != nil,
		})
	}
	return out
}

// lookupName finds route metadata by name in the router-wide name
// registry; names are unique across hosts, so host does not scope the
// lookup.
func (r *Router) lookupName(host, name string) (*RouteMeta, bool) {
	state := r.state.Load()
	if state == nil {
		return nil, false
	}
	if rm, ok := state.names[name]; ok {
		return rm, true
	}
	_ = host // name registry is global (spec.md §3 invariant); host is not used to scope the lookup
	return nil, false
}

// Host begins a fluent, typed route-definition scope (SPEC_FULL.md §3 "the
// primary, idiomatic surface"), mirroring the teacher's functional-options
// RouteOption pattern. Host defs accumulate in a HostDefBuilder; call
// Build to get the []*HostDef slice to pass to Define.
func Host(pattern string) *HostDefBuilder {
	return &HostDefBuilder{def: &HostDef{Pattern: pattern}}
}

// HostDefBuilder builds one HostDef fluently.
type HostDefBuilder struct {
	def *HostDef
}

// Locales sets the host's declared locale tags and default locale
// (spec.md §3 "locales, default_locale").
func (b *HostDefBuilder) Locales(defaultLocale string, locales ...string) *HostDefBuilder {
	b.def.Locales = locales
	b.def.DefaultLocale = defaultLocale
	return b
}

// RootLocaleRedirect overrides the default-true root-locale-redirect flag
// (spec.md §4.5).
func (b *HostDefBuilder) RootLocaleRedirect(enabled bool) *HostDefBuilder {
	b.def.RootLocaleRedirect = enabled
	b.def.RootLocaleRedirectSet = true
	return b
}

// Use attaches host-scope inherited plugins.
func (b *HostDefBuilder) Use(plugins ...Plugin) *HostDefBuilder {
	b.def.Use = append(b.def.Use, plugins...)
	return b
}

// UseNamed attaches host-scope inherited plugins by symbolic name,
// resolved through registry (spec.md §4.6), the way a route table loaded
// from external config (JSON/YAML, not Go source) would reference plugins
// it cannot hold direct values for. The first unresolved name is recorded
// and surfaced as a ConfigError from Define.
func (b *HostDefBuilder) UseNamed(registry *PluginRegistry, names ...string) *HostDefBuilder {
	plugins, err := resolveNamed(registry, names)
	if err != nil {
		b.def.useErr = err
		return b
	}
	b.def.Use = append(b.def.Use, plugins...)
	return b
}

// Path adds a path-fragment scope under this host.
func (b *HostDefBuilder) Path(fragment string) *PathDefBuilder {
	pd := &PathDef{Fragment: fragment, Methods: make(map[string]*MethodDef)}
	b.def.Routes = append(b.def.Routes, pd)
	return &PathDefBuilder{def: pd}
}

// Build returns the completed HostDef.
func (b *HostDefBuilder) Build() *HostDef {
	return b.def
}

// PathDefBuilder builds one PathDef fluently, grounded on the teacher's
// RouteGroup (router.go) nested-scope convenience.
type PathDefBuilder struct {
	def *PathDef
}

// Use sets this scope's own plugin-list contribution.
func (b *PathDefBuilder) Use(plugins ...Plugin) *PathDefBuilder {
	b.def.Use = append(b.def.Use, plugins...)
	return b
}

// UseNamed is PathDefBuilder's counterpart to HostDefBuilder.UseNamed:
// resolves names through registry and appends the result to this scope's
// own plugin-list contribution.
func (b *PathDefBuilder) UseNamed(registry *PluginRegistry, names ...string) *PathDefBuilder {
	plugins, err := resolveNamed(registry, names)
	if err != nil {
		b.def.useErr = err
		return b
	}
	b.def.Use = append(b.def.Use, plugins...)
	return b
}

// Path adds a nested path-fragment scope.
func (b *PathDefBuilder) Path(fragment string) *PathDefBuilder {
	child := &PathDef{Fragment: fragment, Methods: make(map[string]*MethodDef)}
	b.def.Children = append(b.def.Children, child)
	return &PathDefBuilder{def: child}
}

// Get/Post/Put/Patch/Delete register a handler under this scope's path for
// the named HTTP method (spec.md §3 "an HTTP-method symbol drawn from
// {GET, POST, PUT, PATCH, DELETE, OPTIONS}").
func (b *PathDefBuilder) Get(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("GET", to, opts)
}

func (b *PathDefBuilder) Post(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("POST", to, opts)
}

func (b *PathDefBuilder) Put(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("PUT", to, opts)
}

func (b *PathDefBuilder) Patch(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("PATCH", to, opts)
}

func (b *PathDefBuilder) Delete(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("DELETE", to, opts)
}

func (b *PathDefBuilder) Options(to HandlerFunc, opts ...RouteOption) *PathDefBuilder {
	return b.method("OPTIONS", to, opts)
}

func (b *PathDefBuilder) method(method string, to HandlerFunc, opts []RouteOption) *PathDefBuilder {
	reg := &routeRegistration{}
	for _, opt := range opts {
		opt(reg)
	}
	b.def.Methods[method] = &MethodDef{
		To:          to,
		As:          reg.name,
		Use:         reg.use,
		useErr:      reg.useErr,
		Constraints: reg.constraints,
		Localized:   reg.localized,
		Sitemap:     reg.sitemap,
		Redirect:    reg.redirect,
	}
	return b
}
