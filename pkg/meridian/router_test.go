package meridian

import (
	"testing"
)

func okHandler(req *Request) Result { return Text("ok") }

func buildTestRouter(t *testing.T, hosts ...*HostDef) *Router {
	t.Helper()
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(hosts...); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	return r
}

func TestMatchExactHostLiteralAndParam(t *testing.T) {
	api := Host("api.example.com")
	api.Path("users").Get(okHandler, As("users_list"))
	api.Path("users").Path(":id").Get(okHandler, As("users_show"), Constraint("id", `\d+`))
	r := buildTestRouter(t, api.Build())

	res, ok := r.Match("api.example.com", "GET", "/users/42", "/users/42")
	if !ok {
		t.Fatalf("expected match")
	}
	if res.Name != "users_show" {
		t.Errorf("got name %q, want users_show", res.Name)
	}
	if res.Params["id"] != "42" {
		t.Errorf("got id param %q, want 42", res.Params["id"])
	}
}

func TestConstraintRejectsNonMatchingParam(t *testing.T) {
	api := Host("api.example.com")
	api.Path("users").Path(":id").Get(okHandler, As("users_show"), Constraint("id", `\d+`))
	r := buildTestRouter(t, api.Build())

	if _, ok := r.Match("api.example.com", "GET", "/users/abc", "/users/abc"); ok {
		t.Fatalf("expected constraint to reject non-numeric id")
	}
}

func TestWildcardSubdomainFallback(t *testing.T) {
	tenant := Host("*.example.com")
	tenant.Path("dashboard").Get(okHandler, As("dashboard"))
	r := buildTestRouter(t, tenant.Build())

	res, ok := r.Match("acme.example.com", "GET", "/dashboard", "/dashboard")
	if !ok {
		t.Fatalf("expected wildcard host match")
	}
	if res.Subdomain != "acme" {
		t.Errorf("got subdomain %q, want acme", res.Subdomain)
	}
	if res.Params["subdomain"] != "acme" {
		t.Errorf("expected subdomain also captured as a param")
	}
}

func TestGlobalFallbackHost(t *testing.T) {
	global := Host("*")
	global.Path("healthz").Get(okHandler, As("healthz"))
	r := buildTestRouter(t, global.Build())

	if _, ok := r.Match("anything.at.all", "GET", "/healthz", "/healthz"); !ok {
		t.Fatalf("expected global host to catch unmatched hosts")
	}
}

func TestHostFallbackOrderPrefersExactOverWildcardOverGlobal(t *testing.T) {
	exact := Host("api.example.com")
	exact.Path("ping").Get(okHandler, As("exact_ping"))

	wildcard := Host("*.example.com")
	wildcard.Path("ping").Get(okHandler, As("wildcard_ping"))

	global := Host("*")
	global.Path("ping").Get(okHandler, As("global_ping"))

	r := buildTestRouter(t, exact.Build(), wildcard.Build(), global.Build())

	res, ok := r.Match("api.example.com", "GET", "/ping", "/ping")
	if !ok || res.Name != "exact_ping" {
		t.Fatalf("expected exact host to win, got %+v ok=%v", res, ok)
	}

	res, ok = r.Match("other.example.com", "GET", "/ping", "/ping")
	if !ok || res.Name != "wildcard_ping" {
		t.Fatalf("expected wildcard host to win, got %+v ok=%v", res, ok)
	}

	res, ok = r.Match("unrelated.org", "GET", "/ping", "/ping")
	if !ok || res.Name != "global_ping" {
		t.Fatalf("expected global host to win, got %+v ok=%v", res, ok)
	}
}

func TestCatchAllMatchesRemainingSegments(t *testing.T) {
	site := Host("www.example.com")
	site.Path("assets").Path("*file").Get(okHandler, As("asset"))
	r := buildTestRouter(t, site.Build())

	res, ok := r.Match("www.example.com", "GET", "/assets/css/app.css", "/assets/css/app.css")
	if !ok {
		t.Fatalf("expected catch-all match")
	}
	if res.Params["file"] != "css/app.css" {
		t.Errorf("got catch-all capture %q, want css/app.css", res.Params["file"])
	}
}

func TestLocalizedRouteRegistersPerLocaleVariant(t *testing.T) {
	site := Host("www.example.com").Locales("en", "en", "fr", "de")
	site.Path("about").Get(okHandler, As("about"), Localized(map[string]string{
		"fr": "a-propos",
		"de": "ueber-uns",
	}))
	r := buildTestRouter(t, site.Build())

	if res, ok := r.Match("www.example.com", "GET", "/about", "/about"); ok {
		t.Fatalf("expected the localized base route to stay out of the trie, got %+v", res)
	}

	res, ok := r.Match("www.example.com", "GET", "/fr/a-propos", "/fr/a-propos")
	if !ok {
		t.Fatalf("expected french variant to match")
	}
	if res.Locale != "fr" {
		t.Errorf("got locale %q, want fr", res.Locale)
	}
	if res.Name != "about_fr" {
		t.Errorf("got name %q, want about_fr", res.Name)
	}
}

func TestLocalizedRouteRejectsUndeclaredLocale(t *testing.T) {
	site := Host("www.example.com").Locales("en", "en", "fr")
	site.Path("about").Get(okHandler, As("about"), Localized(map[string]string{
		"de": "ueber-uns",
	}))
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(site.Build()); err == nil {
		t.Fatalf("expected Define to reject a localized variant for an undeclared locale")
	}
}

func TestDuplicateRouteNameFailsCompile(t *testing.T) {
	api := Host("api.example.com")
	api.Path("a").Get(okHandler, As("dup"))
	api.Path("b").Get(okHandler, As("dup"))
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(api.Build()); err == nil {
		t.Fatalf("expected Define to reject a duplicate route name")
	}
}

func TestDefineIsAllOrNothing(t *testing.T) {
	good := Host("api.example.com")
	good.Path("ping").Get(okHandler, As("ping"))
	r := buildTestRouter(t, good.Build())

	bad := Host("api.example.com")
	bad.Path("a").Get(okHandler, As("dup"))
	bad.Path("b").Get(okHandler, As("dup"))
	if err := r.Define(bad.Build()); err == nil {
		t.Fatalf("expected the bad redefinition to fail")
	}

	if _, ok := r.Match("api.example.com", "GET", "/ping", "/ping"); !ok {
		t.Fatalf("expected previously published table to remain intact after a failed Define")
	}
}

func TestRouteTableReflectsMethodAndFlags(t *testing.T) {
	api := Host("api.example.com")
	api.Path("items").Path(":id").Get(okHandler, As("items_show"), Constraint("id", `\d+`))
	r := buildTestRouter(t, api.Build())

	table := r.RouteTable()
	if len(table) != 1 {
		t.Fatalf("got %d routes, want 1", len(table))
	}
	info := table[0]
	if info.Method != "GET" {
		t.Errorf("got method %q, want GET", info.Method)
	}
	if info.Pattern != "/items/:id" {
		t.Errorf("got pattern %q, want /items/:id", info.Pattern)
	}
	if !info.HasConstraints {
		t.Errorf("expected HasConstraints to be true")
	}
	if info.Name != "items_show" {
		t.Errorf("got name %q, want items_show", info.Name)
	}
}

func TestUseNamedResolvesThroughRegistry(t *testing.T) {
	registry := NewPluginRegistry()
	seen := &orderPlugin{name: "audit"}
	registry.Register("audit_log", seen)

	api := Host("api.example.com")
	api.Path("ping").Get(okHandler, As("ping"), UseNamed(registry, "audit_log"))
	r := buildTestRouter(t, api.Build())

	table := r.RouteTable()
	if len(table) != 1 || table[0].PluginCount != 1 {
		t.Fatalf("expected the resolved plugin to be attached, got %+v", table)
	}
}

func TestUseNamedUnknownSymbolFailsCompile(t *testing.T) {
	registry := NewPluginRegistry()
	api := Host("api.example.com")
	api.Path("ping").Get(okHandler, As("ping"), UseNamed(registry, "does_not_exist"))
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(api.Build()); err == nil {
		t.Fatalf("expected an unresolved plugin symbol to fail Define")
	}
}

func TestHostLevelUseNamedIsInherited(t *testing.T) {
	registry := NewPluginRegistry()
	registry.Register("rate_limit", &orderPlugin{name: "rl"})

	api := Host("api.example.com").UseNamed(registry, "rate_limit")
	api.Path("ping").Get(okHandler, As("ping"))
	r := buildTestRouter(t, api.Build())

	table := r.RouteTable()
	if len(table) != 1 || table[0].PluginCount != 1 {
		t.Fatalf("expected the host-scope named plugin to be inherited, got %+v", table)
	}
}

func TestPriorityLiteralBeatsParamBeatsCatchAll(t *testing.T) {
	site := Host("www.example.com")
	site.Path("files").Path(":id").Get(okHandler, As("by_id"))
	site.Path("files").Path("latest").Get(okHandler, As("latest"))
	site.Path("files").Path("*rest").Get(okHandler, As("catch_all"))
	r := buildTestRouter(t, site.Build())

	res, ok := r.Match("www.example.com", "GET", "/files/latest", "/files/latest")
	if !ok || res.Name != "latest" {
		t.Fatalf("expected literal segment to win over param, got %+v ok=%v", res, ok)
	}

	res, ok = r.Match("www.example.com", "GET", "/files/123", "/files/123")
	if !ok || res.Name != "by_id" {
		t.Fatalf("expected param segment to win over catch-all, got %+v ok=%v", res, ok)
	}
}
