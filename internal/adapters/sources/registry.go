// Package sources holds the registry that maps the {source} path segment to
// a fetcher adapter. New marketplaces plug in by registering here; nothing
// else in the service knows source names.
package sources

import (
	"sort"

	"deal-finder-service/internal/core/port"
)

// Registry implements port.SourceRegistryPort over a plain map. It is
// populated once at composition time and read-only afterwards.
type Registry struct {
	fetchers map[string]port.SourceFetcherPort
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]port.SourceFetcherPort)}
}

// Register adds one fetcher under its source name, replacing any previous
// registration for that name.
func (r *Registry) Register(name string, fetcher port.SourceFetcherPort) {
	r.fetchers[name] = fetcher
}

// Lookup resolves a source name to its fetcher.
func (r *Registry) Lookup(name string) (port.SourceFetcherPort, bool) {
	fetcher, ok := r.fetchers[name]
	return fetcher, ok
}

// Names lists the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
