package meridian

import (
	"encoding/xml"
	"io"
)

// sitemapURLSet is the sitemaps.org-schema root element (SPEC_FULL.md §3
// "Sitemap/redirect registries"). No third-party XML library appears
// anywhere in the example pack (see DESIGN.md), so this uses stdlib
// encoding/xml.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// WriteSitemap emits an XML sitemap for every named, non-localized route
// on host that carries SitemapMeta, using scheme+host as the URL prefix
// (spec.md §1 "Sitemap/redirect utility registries — treated as metadata
// collectors hung off route definitions").
func (r *Router) WriteSitemap(w io.Writer, scheme, host string) error {
	state := r.state.Load()
	if state == nil {
		return nil
	}

	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, rm := range state.meta {
		if rm.Domain != host || rm.Sitemap == nil || rm.Localized {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        scheme + "://" + host + rm.Pattern,
			ChangeFreq: rm.Sitemap.ChangeFreq,
			Priority:   rm.Sitemap.Priority,
		})
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return enc.Encode(set)
}

// Redirects returns the legacy-path → target-pattern map collected from
// every route's RedirectFrom metadata on host (SPEC_FULL.md §3), for an
// adapter to wire into its own 301 handling ahead of normal matching.
func (r *Router) Redirects(host string) map[string]string {
	state := r.state.Load()
	if state == nil {
		return nil
	}
	out := make(map[string]string)
	for _, rm := range state.meta {
		if rm.Domain != host || rm.Redirect == nil {
			continue
		}
		for _, from := range rm.Redirect.From {
			out[from] = rm.Pattern
		}
	}
	return out
}
