package meridian

import "testing"

func TestURLBuilderPathSubstitutesParamsAndQueries(t *testing.T) {
	api := Host("api.example.com")
	api.Path("items").Path(":id").Get(okHandler, As("items_show"))
	r := buildTestRouter(t, api.Build())
	b := NewURLBuilder(r, DefaultConfig())

	path, err := b.Path(nil, "items_show", "api.example.com", "", map[string]string{
		"id": "42", "verbose": "true",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/items/42?verbose=true" {
		t.Errorf("got %q, want /items/42?verbose=true", path)
	}
}

func TestURLBuilderPathMissingParamErrors(t *testing.T) {
	api := Host("api.example.com")
	api.Path("items").Path(":id").Get(okHandler, As("items_show"))
	r := buildTestRouter(t, api.Build())
	b := NewURLBuilder(r, DefaultConfig())

	if _, err := b.Path(nil, "items_show", "api.example.com", "", nil); err == nil {
		t.Fatalf("expected a missing required parameter to error")
	}
}

func TestURLBuilderPathUnknownNameErrors(t *testing.T) {
	r := buildTestRouter(t, Host("api.example.com").Build())
	b := NewURLBuilder(r, DefaultConfig())
	if _, err := b.Path(nil, "does_not_exist", "api.example.com", "", nil); err == nil {
		t.Fatalf("expected an unknown route name to error")
	}
}

func TestURLBuilderLocalizedRouteUsesDefaultLocale(t *testing.T) {
	site := Host("www.example.com").Locales("en", "en", "fr")
	site.Path("about").Get(okHandler, As("about"), Localized(map[string]string{
		"en": "about",
		"fr": "a-propos",
	}))
	r := buildTestRouter(t, site.Build())
	b := NewURLBuilder(r, DefaultConfig())

	path, err := b.Path(nil, "about", "www.example.com", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/en/about" {
		t.Errorf("got %q, want the default-locale variant /en/about", path)
	}

	path, err = b.Path(nil, "about", "www.example.com", "fr", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/fr/a-propos" {
		t.Errorf("got %q, want /fr/a-propos", path)
	}
}

func TestURLBuilderURLWrapsSchemeAndHost(t *testing.T) {
	api := Host("api.example.com")
	api.Path("ping").Get(okHandler, As("ping"))
	r := buildTestRouter(t, api.Build())
	b := NewURLBuilder(r, DefaultConfig())

	full, err := b.URL(nil, "ping", "api.example.com", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "https://api.example.com/ping" {
		t.Errorf("got %q, want https scheme default", full)
	}
}

func TestRoundTripMatchThenBuildRecoversSamePath(t *testing.T) {
	api := Host("api.example.com")
	api.Path("orders").Path(":id").Get(okHandler, As("order_show"), Constraint("id", `\d+`))
	r := buildTestRouter(t, api.Build())
	b := NewURLBuilder(r, DefaultConfig())

	res, ok := r.Match("api.example.com", "GET", "/orders/7", "/orders/7")
	if !ok {
		t.Fatalf("expected match")
	}
	rebuilt, err := b.Path(nil, res.Name, "api.example.com", "", res.Params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilt != "/orders/7" {
		t.Errorf("got %q, want /orders/7", rebuilt)
	}
}
