package meridian

import "strings"

// MatchResult is the resolution returned by a successful Match (spec.md
// §4.2 "Output").
type MatchResult struct {
	Name      string
	Handler   HandlerFunc
	Use       []Plugin
	Params    map[string]string
	Locale    string
	Domain    string
	Subdomain string
}

// Match resolves (host, method, path) against the compiled tables, in the
// fallback order spec.md §4.2 fixes: exact host, then wildcard-subdomain
// host, then the global "*" host. path must already be normalized (spec.md
// §4.2 "Inputs"); casePath carries the same path before lowercasing, used
// only to populate parameter captures with their original case.
func (r *Router) Match(host, method, path, casePath string) (*MatchResult, bool) {
	state := r.state.Load()
	if state == nil {
		return nil, false
	}
	host = strings.ToLower(host)
	segs := r.segCache.get(strings.TrimPrefix(path, "/"))
	caseSegs := splitFragment(strings.TrimPrefix(casePath, "/"))
	if len(caseSegs) != len(segs) {
		caseSegs = segs
	}

	if ch, ok := state.exact[host]; ok {
		if res, ok := matchHost(ch, segs, caseSegs, method, state.meta, ""); ok {
			return res, true
		}
	}

	for _, ch := range state.wildcard {
		subdomain, ok := subdomainOf(host, ch.base)
		if !ok {
			continue
		}
		if res, ok := matchHost(ch, segs, caseSegs, method, state.meta, subdomain); ok {
			return res, true
		}
	}

	if state.global != nil {
		if res, ok := matchHost(state.global, segs, caseSegs, method, state.meta, ""); ok {
			return res, true
		}
	}

	return nil, false
}

// subdomainOf reports whether host matches base exactly (empty subdomain)
// or is a proper dotted suffix of base (spec.md §4.2 "Matching order" #2),
// returning the leading portion as the subdomain.
func subdomainOf(host, base string) (string, bool) {
	if host == base {
		return "", true
	}
	if strings.HasSuffix(host, "."+base) {
		return strings.TrimSuffix(host, "."+base), true
	}
	return "", false
}

func matchHost(ch *compiledHost, segs, caseSegs []string, method string, meta map[string]*RouteMeta, subdomain string) (*MatchResult, bool) {
	params := make(map[string]string)
	key, ok := ch.trie.match(segs, caseSegs, method, params)
	if !ok {
		return nil, false
	}

	rm, ok := meta[key]
	if !ok || rm.Localized {
		// A base localized entry is never inserted into the trie, so this
		// should not happen; treat defensively as a miss.
		return nil, false
	}

	if !rm.Constraints.check(params) {
		return nil, false
	}

	if subdomain != "" {
		params["subdomain"] = subdomain
	}

	return &MatchResult{
		Name:      rm.Name,
		Handler:   rm.Handler,
		Use:       rm.Use,
		Params:    params,
		Locale:    rm.Locale,
		Domain:    ch.pattern,
		Subdomain: subdomain,
	}, true
}

// DomainConfigFor returns the compiled domain config for host, if any
// (used by the trailing-slash/root-locale-redirect dispatch step).
func (r *Router) DomainConfigFor(host string) *DomainConfig {
	state := r.state.Load()
	if state == nil {
		return nil
	}
	host = strings.ToLower(host)
	if ch, ok := state.exact[host]; ok {
		return ch.domain
	}
	for _, ch := range state.wildcard {
		if _, ok := subdomainOf(host, ch.base); ok {
			return ch.domain
		}
	}
	if state.global != nil {
		return state.global.domain
	}
	return nil
}
