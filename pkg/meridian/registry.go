package meridian

import "sync"

// PluginRegistry resolves symbolic plugin names to one or more Plugin
// objects, supporting composite plugins such as CSRF's generator +
// protection pair (spec.md §4.6 "a registration may attach one or several
// plugin objects under that name").
type PluginRegistry struct {
	mu    sync.RWMutex
	byKey map[string][]Plugin
}

// NewPluginRegistry returns an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{byKey: make(map[string][]Plugin)}
}

// Register attaches one or more plugin objects under name. Calling
// Register again with the same name replaces the prior registration.
func (pr *PluginRegistry) Register(name string, plugins ...Plugin) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.byKey[name] = append([]Plugin{}, plugins...)
}

// Resolve expands a symbolic name to its registered plugin list (spec.md
// §4.6 "any symbol in a use list is expanded to its registered list of
// objects"). The second return is false if name was never registered.
func (pr *PluginRegistry) Resolve(name string) ([]Plugin, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	plugins, ok := pr.byKey[name]
	return plugins, ok
}
