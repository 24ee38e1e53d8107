package repositories

import (
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	domainRepos "github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// DetectorRegistry manages all registered remediation detectors.
type DetectorRegistry struct {
	detectors map[entities.RemediationKind]domainRepos.DetectorRepository
}

// NewDetectorRegistry creates an empty detector registry.
func NewDetectorRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		detectors: make(map[entities.RemediationKind]domainRepos.DetectorRepository),
	}
}

// Register adds a detector under its kind.
func (r *DetectorRegistry) Register(d domainRepos.DetectorRepository) {
	r.detectors[d.Kind()] = d
}

// Get returns the detector for the given kind, or nil if not registered.
func (r *DetectorRegistry) Get(kind entities.RemediationKind) domainRepos.DetectorRepository {
	return r.detectors[kind]
}

// All returns every registered detector in the canonical kind order.
func (r *DetectorRegistry) All() []domainRepos.DetectorRepository {
	return r.Select(entities.AllRemediationKinds())
}

// Select returns the registered detectors of the given kinds, in that order.
func (r *DetectorRegistry) Select(kinds []entities.RemediationKind) []domainRepos.DetectorRepository {
	result := make([]domainRepos.DetectorRepository, 0, len(kinds))
	for _, kind := range kinds {
		if d, ok := r.detectors[kind]; ok {
			result = append(result, d)
		}
	}
	return result
}

// Kinds returns the list of registered kinds.
func (r *DetectorRegistry) Kinds() []entities.RemediationKind {
	kinds := make([]entities.RemediationKind, 0, len(r.detectors))
	for _, d := range r.All() {
		kinds = append(kinds, d.Kind())
	}
	return kinds
}
