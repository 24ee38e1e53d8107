//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// RepositoryBuilder helps create test repositories with a fluent interface.
// The defaults pass every Stage A rule.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	owner         string
	name          string
	archived      bool
	starCount     int
	ownerType     entities.OwnerType
	defaultBranch string
	source        *entities.Repository
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	return &RepositoryBuilder{
		BaseBuilder:   testkit.NewBaseBuilder(),
		owner:         "upstream-org",
		name:          "widget",
		starCount:     42,
		ownerType:     entities.OwnerTypeOrganization,
		defaultBranch: "main",
	}
}

// WithOwner sets the owner login.
func (b *RepositoryBuilder) WithOwner(owner string) *RepositoryBuilder {
	b.owner = owner
	return b
}

// WithName sets the repository name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// WithArchived marks the repository archived.
func (b *RepositoryBuilder) WithArchived(archived bool) *RepositoryBuilder {
	b.archived = archived
	return b
}

// WithStarCount sets the star count.
func (b *RepositoryBuilder) WithStarCount(stars int) *RepositoryBuilder {
	b.starCount = stars
	return b
}

// WithOwnerType sets the owner type.
func (b *RepositoryBuilder) WithOwnerType(ownerType entities.OwnerType) *RepositoryBuilder {
	b.ownerType = ownerType
	return b
}

// WithDefaultBranch sets the default branch.
func (b *RepositoryBuilder) WithDefaultBranch(branch string) *RepositoryBuilder {
	b.defaultBranch = branch
	return b
}

// ForkOf makes the repository a fork of source.
func (b *RepositoryBuilder) ForkOf(source entities.Repository) *RepositoryBuilder {
	b.source = &source
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() entities.Repository {
	repo := entities.Repository{
		Owner:         b.owner,
		Name:          b.name,
		Archived:      b.archived,
		StarCount:     b.starCount,
		OwnerType:     b.ownerType,
		DefaultBranch: b.defaultBranch,
	}
	if b.source != nil {
		source := *b.source
		repo.IsFork = true
		repo.Source = &source
	}
	return repo
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewRepositoryBuilder()
	b.owner = fresh.owner
	b.name = fresh.name
	b.archived = false
	b.starCount = fresh.starCount
	b.ownerType = fresh.ownerType
	b.defaultBranch = fresh.defaultBranch
	b.source = nil
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	if b.source != nil {
		source := *b.source
		clone.source = &source
	}
	return &clone
}
