package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// SourceRegistry manages all registered repository sources.
type SourceRegistry struct {
	sources map[string]domainRepos.SourceRepository
}

// NewSourceRegistry creates an empty source registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[string]domainRepos.SourceRepository),
	}
}

// Register adds a source under its name (e.g. "events").
func (r *SourceRegistry) Register(source domainRepos.SourceRepository) {
	r.sources[source.Name()] = source
}

// Get returns the source registered under name.
func (r *SourceRegistry) Get(name string) (domainRepos.SourceRepository, error) {
	source, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %q (available: %v)", name, r.Names())
	}
	return source, nil
}

// Names returns the sorted list of registered source names.
func (r *SourceRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
