//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// AnalysisContextBuilder helps create analysis contexts. The defaults pass
// every Stage B rule with a lockfile modified at lockfileModifiedAt.
type AnalysisContextBuilder struct {
	*testkit.BaseBuilder
	repository          entities.Repository
	manifest            string
	lockfile            string
	hasManifest         bool
	hasLockfile         bool
	lockfileModifiedAt  time.Time
	hasCIOnPullRequests bool
	alreadyForked       bool
	competingLockfile   bool
	contribution        bool
}

// NewAnalysisContextBuilder creates a builder with a lockfile modified on 2026-09-01.
func NewAnalysisContextBuilder() *AnalysisContextBuilder {
	return &AnalysisContextBuilder{
		BaseBuilder:         testkit.NewBaseBuilder(),
		repository:          NewRepositoryBuilder().BuildRepository(),
		manifest:            `{"name":"widget","repository":"github:upstream-org/widget"}`,
		lockfile:            `{"name":"widget","lockfileVersion":2}`,
		hasManifest:         true,
		hasLockfile:         true,
		lockfileModifiedAt:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		hasCIOnPullRequests: true,
	}
}

// WithManifest sets the package.json content.
func (b *AnalysisContextBuilder) WithManifest(content string) *AnalysisContextBuilder {
	b.manifest = content
	b.hasManifest = true
	return b
}

// WithoutManifest removes package.json.
func (b *AnalysisContextBuilder) WithoutManifest() *AnalysisContextBuilder {
	b.hasManifest = false
	return b
}

// WithoutLockfile removes package-lock.json.
func (b *AnalysisContextBuilder) WithoutLockfile() *AnalysisContextBuilder {
	b.hasLockfile = false
	return b
}

// WithLockfileModifiedAt sets the date of the last commit touching the lockfile.
func (b *AnalysisContextBuilder) WithLockfileModifiedAt(modified time.Time) *AnalysisContextBuilder {
	b.lockfileModifiedAt = modified
	return b
}

// WithCIOnPullRequests sets whether a workflow runs on pull requests.
func (b *AnalysisContextBuilder) WithCIOnPullRequests(enabled bool) *AnalysisContextBuilder {
	b.hasCIOnPullRequests = enabled
	return b
}

// WithAlreadyForked sets whether the ledger records a fork.
func (b *AnalysisContextBuilder) WithAlreadyForked(forked bool) *AnalysisContextBuilder {
	b.alreadyForked = forked
	return b
}

// WithCompetingLockfile sets whether another package manager's lockfile exists.
func (b *AnalysisContextBuilder) WithCompetingLockfile(found bool) *AnalysisContextBuilder {
	b.competingLockfile = found
	return b
}

// WithContributionTemplate sets whether a contribution template exists.
func (b *AnalysisContextBuilder) WithContributionTemplate(found bool) *AnalysisContextBuilder {
	b.contribution = found
	return b
}

// Build creates the analysis context (satisfies testkit.Builder interface).
func (b *AnalysisContextBuilder) Build() interface{} {
	return b.BuildAnalysisContext()
}

// BuildAnalysisContext creates the analysis context with a concrete return type.
func (b *AnalysisContextBuilder) BuildAnalysisContext() *entities.AnalysisContext {
	analysis := &entities.AnalysisContext{
		Repository:              b.repository,
		HasCIOnPullRequests:     b.hasCIOnPullRequests,
		CIEvaluated:             b.hasManifest && b.hasLockfile,
		IsAlreadyForked:         b.alreadyForked,
		HasCompetingLockfile:    b.competingLockfile,
		HasContributionTemplate: b.contribution,
	}
	if b.hasManifest {
		analysis.Manifest = &entities.ManifestFile{Path: entities.ManifestPath, Content: []byte(b.manifest)}
	}
	if b.hasLockfile {
		analysis.Lockfile = &entities.ManifestFile{
			Path:           entities.LockfilePath,
			Content:        []byte(b.lockfile),
			LastModifiedAt: b.lockfileModifiedAt,
		}
	}
	return analysis
}

// Reset clears the builder state, allowing it to be reused.
func (b *AnalysisContextBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewAnalysisContextBuilder()
	fresh.BaseBuilder = b.BaseBuilder
	*b = *fresh
	return b
}

// Clone creates a deep copy of the AnalysisContextBuilder.
func (b *AnalysisContextBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	return &clone
}
