package commands

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// Rule is a named predicate. Rules are evaluated in order and the first one
// that fails names the rejection.
type Rule[T any] struct {
	Name  string
	Check func(candidate T) bool
}

// Verdict is the outcome of evaluating a rule list.
type Verdict struct {
	Accepted   bool
	RejectedBy string
}

// Evaluate runs rules in order and stops at the first failure.
func Evaluate[T any](candidate T, rules []Rule[T]) Verdict {
	for _, rule := range rules {
		if !rule.Check(candidate) {
			return Verdict{RejectedBy: rule.Name}
		}
	}
	return Verdict{Accepted: true}
}

// Rule names, also used as metric labels.
const (
	RuleNotArchived            = "not_archived"
	RuleEnoughStars            = "enough_stars"
	RuleOwnerType              = "owner_type"
	RuleManifestPair           = "manifest_and_lockfile"
	RuleFreshLockfile          = "fresh_lockfile"
	RuleCIOnPullRequests       = "ci_on_pull_requests"
	RuleNotAlreadyForked       = "not_already_forked"
	RuleNoCompetingLockfile    = "no_competing_lockfile"
	RuleNoContributionTemplate = "no_contribution_template"
	RuleSamePlatform           = "same_platform"
	RuleNotAWorkspace          = "not_a_workspace"

	// RejectAnalysisFailed and RejectNoRemediation are not rules but are
	// counted with them.
	RejectAnalysisFailed = "analysis_failed"
	RejectNoRemediation  = "no_remediation"
)

// StageARules only look at repository metadata. An empty ownerType disables
// the owner-type rule.
func StageARules(minStars int, ownerType entities.OwnerType) []Rule[entities.Repository] {
	rules := []Rule[entities.Repository]{
		{Name: RuleNotArchived, Check: func(r entities.Repository) bool { return !r.Archived }},
		{Name: RuleEnoughStars, Check: func(r entities.Repository) bool { return r.StarCount > minStars }},
	}
	if ownerType != "" {
		rules = append(rules, Rule[entities.Repository]{
			Name:  RuleOwnerType,
			Check: func(r entities.Repository) bool { return r.OwnerType == ownerType },
		})
	}
	return rules
}

// StageBRules look at the fetched AnalysisContext.
func StageBRules(now time.Time, staleness time.Duration) []Rule[*entities.AnalysisContext] {
	return []Rule[*entities.AnalysisContext]{
		{Name: RuleManifestPair, Check: (*entities.AnalysisContext).HasManifestPair},
		{Name: RuleFreshLockfile, Check: func(c *entities.AnalysisContext) bool {
			modified := c.Lockfile.LastModifiedAt
			return !modified.IsZero() && modified.After(now.Add(-staleness))
		}},
		{Name: RuleCIOnPullRequests, Check: func(c *entities.AnalysisContext) bool { return c.HasCIOnPullRequests }},
		{Name: RuleNotAlreadyForked, Check: func(c *entities.AnalysisContext) bool { return !c.IsAlreadyForked }},
		{Name: RuleNoCompetingLockfile, Check: func(c *entities.AnalysisContext) bool { return !c.HasCompetingLockfile }},
		{Name: RuleNoContributionTemplate, Check: func(c *entities.AnalysisContext) bool {
			return !c.HasContributionTemplate
		}},
		{Name: RuleSamePlatform, Check: func(c *entities.AnalysisContext) bool {
			return declaresSamePlatform(c.Manifest.Text())
		}},
		{Name: RuleNotAWorkspace, Check: func(c *entities.AnalysisContext) bool {
			return !gjson.Get(c.Manifest.Text(), "workspaces").Exists()
		}},
	}
}

// platformMarkers identify a repository location on the targeted host.
func platformMarkers() []string {
	return []string{"github.com", "github:"}
}

// declaresSamePlatform inspects the manifest's repository field. A missing
// field, or an object without url, is assumed to match.
func declaresSamePlatform(manifest string) bool {
	repository := gjson.Get(manifest, "repository")
	var location string
	switch {
	case !repository.Exists():
		return true
	case repository.IsObject():
		url := repository.Get("url")
		if !url.Exists() {
			return true
		}
		location = url.String()
	default:
		location = repository.String()
	}

	for _, marker := range platformMarkers() {
		if strings.Contains(location, marker) {
			return true
		}
	}
	return isShorthand(location)
}

// isShorthand matches the bare "user/repo" form, which npm resolves to GitHub.
func isShorthand(location string) bool {
	if strings.Contains(location, ":") {
		return false
	}
	owner, name, ok := strings.Cut(location, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}
