package meridian

// TrailingSlashPolicy selects how the normalizer treats a trailing '/'
// (spec.md §4.5).
type TrailingSlashPolicy string

const (
	// TrailingSlashStrict preserves the trailing slash as significant to
	// the route pattern.
	TrailingSlashStrict TrailingSlashPolicy = "strict"
	// TrailingSlashIgnore strips a trailing slash silently before
	// matching.
	TrailingSlashIgnore TrailingSlashPolicy = "ignore"
	// TrailingSlashRedirect answers with a redirect to the path without
	// its trailing slash; matching is skipped.
	TrailingSlashRedirect TrailingSlashPolicy = "redirect"
)

// Config holds the core's behavior knobs, generalizing the teacher's
// Config/DefaultConfig/ProductionConfig/DevelopmentConfig quartet
// (fasthttpadapter/app.go) to the router's own concerns rather than
// transport/server settings (those live in the adapter's own Config).
type Config struct {
	// SegmentCacheMaxSize bounds the normalized-path segment cache
	// (spec.md §3 "bounded by a max size (default 1000)").
	SegmentCacheMaxSize int

	// TrailingSlash selects the trailing-slash policy (spec.md §4.5).
	TrailingSlash TrailingSlashPolicy

	// RedirectStatus is the status used when TrailingSlash is
	// TrailingSlashRedirect (spec.md §4.5 "default 301").
	RedirectStatus int

	// DefaultScheme is url()'s default protocol (spec.md §4.3 "protocol
	// defaults to https").
	DefaultScheme string
}

// DefaultConfig returns balanced settings for most applications, mirroring
// the teacher's DefaultConfig (fasthttpadapter/app.go).
func DefaultConfig() Config {
	return Config{
		SegmentCacheMaxSize: 1000,
		TrailingSlash:       TrailingSlashIgnore,
		RedirectStatus:      301,
		DefaultScheme:       "https",
	}
}

// ProductionConfig returns settings favoring SEO-friendly canonical URLs:
// redirect rather than silently collapse trailing slashes.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.TrailingSlash = TrailingSlashRedirect
	return cfg
}

// DevelopmentConfig returns settings favoring permissive matching during
// local iteration.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.TrailingSlash = TrailingSlashIgnore
	return cfg
}
