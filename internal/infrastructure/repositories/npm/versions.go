package npm

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"
)

var versionLiteral = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// nonRegistryPrefixes mark specs that do not resolve through the registry.
func nonRegistryPrefixes() []string {
	return []string{
		"npm:", "git", "http:", "https:", "file:", "link:", "workspace:", "portal:", "patch:", "github:",
	}
}

// IsRegistryRange reports a spec that is a semver range resolved from the registry.
// Tags ("latest"), aliases, URLs, paths and repository shorthands are excluded.
func IsRegistryRange(spec string) bool {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.Contains(spec, "/") {
		return false
	}
	for _, prefix := range nonRegistryPrefixes() {
		if strings.HasPrefix(spec, prefix) {
			return false
		}
	}
	if _, err := semver.NewConstraint(spec); err != nil {
		return false
	}
	return versionLiteral.MatchString(spec) || spec == "*" || spec == "x"
}

// IsExactVersion reports a spec pinned to a single version.
func IsExactVersion(spec string) bool {
	_, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(spec), "="))
	return err == nil
}

// Satisfies reports whether version is allowed by spec.
func Satisfies(version, spec string) bool {
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return false
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(parsed)
}

// LowerBound returns the smallest version mentioned in the range that the range allows.
// Exclusive bounds (">14") are resolved to the next patch.
func LowerBound(spec string) (*semver.Version, bool) {
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return nil, false
	}

	var best *semver.Version
	for _, literal := range versionLiteral.FindAllString(spec, -1) {
		candidate, parseErr := semver.NewVersion(literal)
		if parseErr != nil {
			continue
		}
		if !constraint.Check(candidate) {
			next := candidate.IncPatch()
			if !constraint.Check(&next) {
				continue
			}
			candidate = &next
		}
		if best == nil || candidate.LessThan(best) {
			best = candidate
		}
	}
	return best, best != nil
}

// HighestLowerBound returns the strictest lower bound across ranges.
func HighestLowerBound(ranges []string) (*semver.Version, bool) {
	var bounds []string
	byCanonical := map[string]*semver.Version{}
	for _, spec := range ranges {
		bound, ok := LowerBound(spec)
		if !ok {
			continue
		}
		canonical := "v" + bound.String()
		if _, seen := byCanonical[canonical]; !seen {
			byCanonical[canonical] = bound
			bounds = append(bounds, canonical)
		}
	}
	if len(bounds) == 0 {
		return nil, false
	}
	modsemver.Sort(bounds)
	return byCanonical[bounds[len(bounds)-1]], true
}
