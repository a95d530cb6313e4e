// Command meridian-routes loads a route table and prints its compiled
// shape, the way the teacher's examples/basic.go stood up a demo App and
// served it, except this one never listens: it calls Define, walks
// Router.RouteTable, and exits. It doubles as a smoke test for Define
// itself — a config that fails to compile makes the process exit non-zero
// with the configuration error's message.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/meridian-http/meridian"
)

func main() {
	format := flag.String("format", "table", "output format: table or json")
	flag.Parse()

	logger := meridian.NewLogger(meridian.DefaultLoggerConfig())
	router := meridian.NewRouter(meridian.DefaultConfig(), logger)

	if err := router.Define(demoHosts()...); err != nil {
		fmt.Fprintf(os.Stderr, "meridian-routes: failed to compile routes: %v\n", err)
		os.Exit(1)
	}

	routes := router.RouteTable()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Domain != routes[j].Domain {
			return routes[i].Domain < routes[j].Domain
		}
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})

	switch *format {
	case "json":
		printJSON(routes)
	default:
		printTable(routes)
	}
}

func printJSON(routes []*meridian.RouteInfo) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(routes); err != nil {
		fmt.Fprintf(os.Stderr, "meridian-routes: %v\n", err)
		os.Exit(1)
	}
}

func printTable(routes []*meridian.RouteInfo) {
	fmt.Printf("%-24s %-7s %-32s %-20s %s\n", "DOMAIN", "METHOD", "PATTERN", "NAME", "FLAGS")
	for _, rt := range routes {
		var flags []byte
		if rt.HasConstraints {
			flags = append(flags, 'C')
		}
		if rt.Localized {
			flags = append(flags, 'L')
		}
		if rt.HasSitemap {
			flags = append(flags, 'S')
		}
		if rt.HasRedirect {
			flags = append(flags, 'R')
		}
		fmt.Printf("%-24s %-7s %-32s %-20s %s (plugins=%d)\n",
			rt.Domain, rt.Method, rt.Pattern, rt.Name, string(flags), rt.PluginCount)
	}
	fmt.Printf("%d routes across %d domains\n", len(routes), countDomains(routes))
}

func countDomains(routes []*meridian.RouteInfo) int {
	seen := make(map[string]bool)
	for _, rt := range routes {
		seen[rt.Domain] = true
	}
	return len(seen)
}

// demoHosts builds the sample route table this command smoke-tests
// Define against, in the spirit of the teacher's examples/basic.go
// setupRoutes: a root host plus an API scope with CRUD-shaped routes, an
// :id constraint, and a localized marketing host.
func demoHosts() []*meridian.HostDef {
	noop := func(req *meridian.Request) meridian.Result { return meridian.None() }

	api := meridian.Host("api.example.com")
	api.Path("health").Get(noop, meridian.As("health"))

	items := api.Path("items")
	items.Get(noop, meridian.As("items_list"))
	items.Post(noop, meridian.As("items_create"))
	item := items.Path(":id")
	item.Get(noop, meridian.As("items_show"), meridian.Constraint("id", `\d+`))
	item.Put(noop, meridian.As("items_update"), meridian.Constraint("id", `\d+`))
	item.Delete(noop, meridian.As("items_delete"), meridian.Constraint("id", `\d+`))

	marketing := meridian.Host("www.example.com").Locales("en", "en", "fr", "de")
	marketing.Path("about").Get(noop, meridian.As("about"), meridian.Localized(map[string]string{
		"fr": "a-propos",
		"de": "ueber-uns",
	}))

	return []*meridian.HostDef{api.Build(), marketing.Build()}
}
