//go:build unit

package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	builders "github.com/rios0rios0/forkfix/test/domain/entitybuilders"
)

func TestStageARules(t *testing.T) {
	t.Parallel()

	t.Run("should reject an archived repository regardless of its stars", func(t *testing.T) {
		// given
		repo := builders.NewRepositoryBuilder().WithArchived(true).WithStarCount(500).BuildRepository()

		// when
		verdict := commands.Evaluate(repo, commands.StageARules(10, ""))

		// then
		assert.False(t, verdict.Accepted)
		assert.Equal(t, commands.RuleNotArchived, verdict.RejectedBy)
	})

	t.Run("should require strictly more stars than the minimum", func(t *testing.T) {
		// given
		repo := builders.NewRepositoryBuilder().WithStarCount(10).BuildRepository()

		// when
		verdict := commands.Evaluate(repo, commands.StageARules(10, ""))

		// then
		assert.Equal(t, commands.RuleEnoughStars, verdict.RejectedBy)
	})

	t.Run("should filter on owner type only when one is requested", func(t *testing.T) {
		// given
		repo := builders.NewRepositoryBuilder().WithOwnerType(entities.OwnerTypeUser).BuildRepository()

		// when
		unfiltered := commands.Evaluate(repo, commands.StageARules(10, ""))
		filtered := commands.Evaluate(repo, commands.StageARules(10, entities.OwnerTypeOrganization))

		// then
		assert.True(t, unfiltered.Accepted)
		assert.Equal(t, commands.RuleOwnerType, filtered.RejectedBy)
	})
}

func TestStageBRules(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	rules := commands.StageBRules(now, 183*24*time.Hour)

	tests := []struct {
		name     string
		analysis *entities.AnalysisContext
		expected string
	}{
		{
			name:     "should reject a repository without lockfile",
			analysis: builders.NewAnalysisContextBuilder().WithoutLockfile().BuildAnalysisContext(),
			expected: commands.RuleManifestPair,
		},
		{
			name: "should reject a lockfile untouched for longer than the window",
			analysis: builders.NewAnalysisContextBuilder().
				WithLockfileModifiedAt(now.AddDate(-1, 0, 0)).BuildAnalysisContext(),
			expected: commands.RuleFreshLockfile,
		},
		{
			name: "should reject a lockfile with an unknown history",
			analysis: builders.NewAnalysisContextBuilder().
				WithLockfileModifiedAt(time.Time{}).BuildAnalysisContext(),
			expected: commands.RuleFreshLockfile,
		},
		{
			name:     "should reject a repository without CI on pull requests",
			analysis: builders.NewAnalysisContextBuilder().WithCIOnPullRequests(false).BuildAnalysisContext(),
			expected: commands.RuleCIOnPullRequests,
		},
		{
			name:     "should reject a repository already forked",
			analysis: builders.NewAnalysisContextBuilder().WithAlreadyForked(true).BuildAnalysisContext(),
			expected: commands.RuleNotAlreadyForked,
		},
		{
			name:     "should reject a repository using another package manager",
			analysis: builders.NewAnalysisContextBuilder().WithCompetingLockfile(true).BuildAnalysisContext(),
			expected: commands.RuleNoCompetingLockfile,
		},
		{
			name:     "should reject a repository with a contribution template",
			analysis: builders.NewAnalysisContextBuilder().WithContributionTemplate(true).BuildAnalysisContext(),
			expected: commands.RuleNoContributionTemplate,
		},
		{
			name: "should reject a repository hosted elsewhere",
			analysis: builders.NewAnalysisContextBuilder().
				WithManifest(`{"repository":{"type":"git","url":"https://gitlab.com/a/b.git"}}`).BuildAnalysisContext(),
			expected: commands.RuleSamePlatform,
		},
		{
			name: "should reject a workspace root",
			analysis: builders.NewAnalysisContextBuilder().
				WithManifest(`{"repository":"a/b","workspaces":["packages/*"]}`).BuildAnalysisContext(),
			expected: commands.RuleNotAWorkspace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			analysis := tt.analysis

			// when
			verdict := commands.Evaluate(analysis, rules)

			// then
			assert.False(t, verdict.Accepted)
			assert.Equal(t, tt.expected, verdict.RejectedBy)
		})
	}

	t.Run("should accept a repository passing every rule", func(t *testing.T) {
		t.Parallel()

		// given
		analysis := builders.NewAnalysisContextBuilder().BuildAnalysisContext()

		// when
		verdict := commands.Evaluate(analysis, rules)

		// then
		assert.True(t, verdict.Accepted)
		assert.Empty(t, verdict.RejectedBy)
	})
}

func TestDeclaresSamePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		expected bool
	}{
		{"should accept a missing repository field", `{"name":"a"}`, true},
		{"should accept an object without url", `{"repository":{"type":"git"}}`, true},
		{"should accept a github url", `{"repository":{"url":"git+https://github.com/a/b.git"}}`, true},
		{"should accept the github prefix", `{"repository":"github:a/b"}`, true},
		{"should accept the bare shorthand", `{"repository":"a/b"}`, true},
		{"should reject another host prefix", `{"repository":"gitlab:a/b"}`, false},
		{"should reject another host url", `{"repository":"https://bitbucket.org/a/b"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			manifest := tt.manifest

			// when
			result := commands.DeclaresSamePlatform(manifest)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}
