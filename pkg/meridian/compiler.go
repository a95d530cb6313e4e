package meridian

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// compiledHost is one host's compiled trie plus its optional domain
// config (spec.md §3 "A host's domain config... is stored alongside the
// tries").
type compiledHost struct {
	pattern    string
	trie       *trieNode
	domain     *DomainConfig
	isWildcard bool
	base       string // suffix after "*." for wildcard hosts
}

// compiledState is the full published table set: tries, metadata, name
// registry (spec.md §3 "Lifecycle"). A Define call builds one of these
// from scratch and atomically swaps it in — Router never mutates a
// published compiledState.
type compiledState struct {
	exact    map[string]*compiledHost
	wildcard []*compiledHost
	global   *compiledHost
	meta     map[string]*RouteMeta
	names    map[string]*RouteMeta
}

// compileCtx carries the state threaded through recursive descent for one
// host (spec.md §4.1 "maintaining two pieces of state: the accumulated
// path segments and the inherited plugin list").
type compileCtx struct {
	hostPattern string
	domain      *DomainConfig
	trieRoot    *trieNode
	meta        map[string]*RouteMeta
	names       map[string]*RouteMeta
	logger      *Logger
}

// compile builds a compiledState from host definitions, per spec.md §4.1.
// It never mutates a table that might still be in use; the caller
// publishes the result only after compile returns successfully.
func compile(hosts []*HostDef, logger *Logger) (*compiledState, error) {
	state := &compiledState{
		exact: make(map[string]*compiledHost),
		meta:  make(map[string]*RouteMeta),
		names: make(map[string]*RouteMeta),
	}

	for _, h := range hosts {
		ch, err := compileHost(h, state.meta, state.names, logger)
		if err != nil {
			return nil, err
		}
		switch {
		case h.Pattern == "*":
			state.global = ch
		case strings.HasPrefix(h.Pattern, "*."):
			ch.isWildcard = true
			ch.base = strings.TrimPrefix(h.Pattern, "*.")
			state.wildcard = append(state.wildcard, ch)
		default:
			state.exact[h.Pattern] = ch
		}
	}

	return state, nil
}

func compileHost(h *HostDef, meta, names map[string]*RouteMeta, logger *Logger) (*compiledHost, error) {
	if h.useErr != nil {
		return nil, h.useErr
	}

	var domain *DomainConfig
	if len(h.Locales) > 0 {
		for _, tag := range h.Locales {
			if _, err := language.Parse(tag); err != nil {
				return nil, NewConfigError(fmt.Sprintf(
					"host %q: locale %q is not a valid BCP-47 tag: %v", h.Pattern, tag, err))
			}
		}

		rootRedirect := true
		if h.RootLocaleRedirectSet {
			rootRedirect = h.RootLocaleRedirect
		}
		domain = &DomainConfig{
			Locales:            h.Locales,
			DefaultLocale:      h.DefaultLocale,
			RootLocaleRedirect: rootRedirect,
		}
		if !domain.hasLocale(domain.DefaultLocale) {
			return nil, NewConfigError(fmt.Sprintf(
				"host %q: default_locale %q is not a member of locales %v", h.Pattern, h.DefaultLocale, h.Locales))
		}
	}

	ctx := &compileCtx{
		hostPattern: h.Pattern,
		domain:      domain,
		trieRoot:    newTrieNode(),
		meta:        meta,
		names:       names,
		logger:      logger,
	}

	for _, route := range h.Routes {
		if err := compilePath(ctx, route, nil, h.Use); err != nil {
			return nil, err
		}
	}

	return &compiledHost{pattern: h.Pattern, trie: ctx.trieRoot, domain: domain}, nil
}

// compilePath descends one PathDef, accumulating segments and the
// inherited plugin list (spec.md §4.1).
func compilePath(ctx *compileCtx, node *PathDef, segsAccum []string, inherited []Plugin) error {
	if node.useErr != nil {
		return node.useErr
	}

	use := mergeUse(inherited, node.Use, node.UseReset)

	fragSegs := splitFragment(node.Fragment)
	segs := append(append([]string{}, segsAccum...), fragSegs...)

	for methodSym, methodDef := range node.Methods {
		if err := registerRoute(ctx, segs, methodSym, methodDef, mergeUse(use, methodDef.Use, false)); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := compilePath(ctx, child, segs, use); err != nil {
			return err
		}
	}

	return nil
}

// mergeUse implements spec.md §4.1's rule for the `use` key: concatenation
// followed by de-duplication preserving first occurrence; a reset empties
// the inherited list before appending own.
func mergeUse(inherited, own []Plugin, reset bool) []Plugin {
	var base []Plugin
	if !reset {
		base = inherited
	}
	combined := append(append([]Plugin{}, base...), own...)

	seen := make(map[Plugin]bool, len(combined))
	out := make([]Plugin, 0, len(combined))
	for _, p := range combined {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// splitFragment splits a fragment key on '/', dropping empty parts and a
// leading '/' (spec.md §4.1 "split on '/', empty parts dropped").
func splitFragment(fragment string) []string {
	if fragment == "" {
		return nil
	}
	parts := strings.Split(fragment, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func registerRoute(ctx *compileCtx, segs []string, method string, def *MethodDef, use []Plugin) error {
	if def.useErr != nil {
		return def.useErr
	}

	method = strings.ToUpper(method)
	pattern := "/" + strings.Join(segs, "/")

	constraints, err := compileConstraints(def.Constraints)
	if err != nil {
		return err
	}

	paramNames := paramNamesOf(segs)

	if len(def.Localized) > 0 {
		return registerLocalizedRoute(ctx, segs, pattern, method, def, use, constraints, paramNames)
	}

	if def.As != "" {
		if existing, dup := ctx.names[def.As]; dup {
			return NewDuplicateNameError(def.As, existing.Pattern, pattern)
		}
	}

	rm := &RouteMeta{
		Domain:      ctx.hostPattern,
		Method:      method,
		Name:        def.As,
		Handler:     def.To,
		Use:         use,
		Pattern:     pattern,
		ParamNames:  paramNames,
		Segments:    segs,
		Constraints: constraints,
		Sitemap:     def.Sitemap,
		Redirect:    def.Redirect,
	}

	key := metaKey(ctx.hostPattern, method, pattern)
	ctx.meta[key] = rm
	leaf := ctx.trieRoot.insert(segs)
	if leaf.handlers == nil {
		leaf.handlers = make(map[string]string)
	}
	leaf.handlers[method] = key

	if def.As != "" {
		ctx.names[def.As] = rm
	}
	return nil
}

// registerLocalizedRoute implements spec.md §4.1 "Localized routes".
func registerLocalizedRoute(ctx *compileCtx, segs []string, pattern, method string, def *MethodDef, use []Plugin, constraints constraintSet, paramNames []string) error {
	if def.As != "" {
		if existing, dup := ctx.names[def.As]; dup {
			return NewDuplicateNameError(def.As, existing.Pattern, pattern)
		}
	}

	// 1. Base metadata entry, not inserted into the trie.
	base := &RouteMeta{
		Domain:      ctx.hostPattern,
		Method:      method,
		Name:        def.As,
		Handler:     def.To,
		Use:         use,
		Pattern:     pattern,
		ParamNames:  paramNames,
		Segments:    segs,
		Constraints: constraints,
		Localized:   true,
		Sitemap:     def.Sitemap,
		Redirect:    def.Redirect,
	}
	baseKey := metaKey(ctx.hostPattern, method, pattern)
	ctx.meta[baseKey] = base
	if def.As != "" {
		ctx.names[def.As] = base
	}

	// 2. Warn (not fatal) for locales missing a localized variant.
	if ctx.domain != nil {
		for _, locale := range ctx.domain.Locales {
			if _, ok := def.Localized[locale]; !ok && ctx.logger != nil {
				ctx.logger.Warn("route missing localized variant",
					"route", def.As, "host", ctx.hostPattern, "locale", locale)
			}
		}
	}

	for locale, localPath := range def.Localized {
		if ctx.domain == nil || !ctx.domain.hasLocale(locale) {
			return NewConfigError(fmt.Sprintf(
				"route %q on host %q: localized locale %q is not declared in the host's locales", def.As, ctx.hostPattern, locale))
		}

		localSegs := splitFragment(localPath)
		fullSegs := append([]string{locale}, localSegs...)
		localPattern := "/" + strings.Join(fullSegs, "/")
		derivedName := def.As
		if derivedName != "" {
			derivedName = derivedName + "_" + locale
		}

		if derivedName != "" {
			if existing, dup := ctx.names[derivedName]; dup {
				return NewDuplicateNameError(derivedName, existing.Pattern, localPattern)
			}
		}

		lm := &RouteMeta{
			Domain:      ctx.hostPattern,
			Method:      method,
			Name:        derivedName,
			Handler:     def.To,
			Use:         use,
			Pattern:     localPattern,
			ParamNames:  paramNamesOf(fullSegs),
			Segments:    fullSegs,
			Constraints: constraints,
			Locale:      locale,
			Sitemap:     def.Sitemap,
			Redirect:    def.Redirect,
		}
		lKey := metaKey(ctx.hostPattern, method, localPattern)
		ctx.meta[lKey] = lm
		leaf := ctx.trieRoot.insert(fullSegs)
		if leaf.handlers == nil {
			leaf.handlers = make(map[string]string)
		}
		leaf.handlers[method] = lKey

		if derivedName != "" {
			ctx.names[derivedName] = lm
		}
	}

	return nil
}

func compileConstraints(raw map[string]string) (constraintSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(constraintSet, len(raw))
	for name, pattern := range raw {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, NewConfigError(fmt.Sprintf("constraint %q: invalid regex %q: %v", name, pattern, err))
		}
		out[name] = re
	}
	return out, nil
}

func paramNamesOf(segs []string) []string {
	var out []string
	for _, s := range segs {
		if kind, name := classifySegment(s); kind != segLiteral {
			out = append(out, name)
		}
	}
	return out
}
