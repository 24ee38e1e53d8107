package entities

import "fmt"

// RemediationKind is one of the non-intrusive changes this system proposes.
type RemediationKind string

const (
	KindPinDependencies RemediationKind = "pin-dependencies"
	KindFixEngines      RemediationKind = "fix-engines"
	KindSortManifest    RemediationKind = "sort-manifest"
)

// AllRemediationKinds returns every kind in a stable order.
func AllRemediationKinds() []RemediationKind {
	return []RemediationKind{KindPinDependencies, KindFixEngines, KindSortManifest}
}

// ParseRemediationKind validates a kind name read from config or the ledger.
func ParseRemediationKind(value string) (RemediationKind, error) {
	for _, kind := range AllRemediationKinds() {
		if string(kind) == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown remediation kind %q", value)
}

// Change is one entry of a detector's change list.
type Change struct {
	Path  string // file the change applies to
	Field string // dotted location inside the file, e.g. "dependencies.lodash"
	From  string
	To    string
}

func (c Change) String() string {
	switch {
	case c.From == "":
		return fmt.Sprintf("%s: set `%s` to `%s`", c.Path, c.Field, c.To)
	case c.To == "":
		return fmt.Sprintf("%s: `%s` (%s)", c.Path, c.Field, c.From)
	default:
		return fmt.Sprintf("%s: `%s` from `%s` to `%s`", c.Path, c.Field, c.From, c.To)
	}
}

// DetectionInput is what every detector receives.
type DetectionInput struct {
	Repository   Repository
	Manifest     string
	Lockfile     string
	EditorConfig string // optional .editorconfig content used to format the output
}

// RenderedFile is a file re-serialised by a detector with the original
// indentation and newline convention.
type RenderedFile struct {
	Path    string
	Content string
}

// Detection is the result of running one detector.
type Detection struct {
	Kind    RemediationKind
	Changes []Change
	Files   []RenderedFile
}

// HasChanges reports whether the detector found anything to propose.
func (d *Detection) HasChanges() bool {
	return d != nil && len(d.Changes) > 0
}

// FileEdit is a file to commit as part of a proposal.
type FileEdit struct {
	Path       string
	NewContent string
	BaseSHA    string
}

// RemediationProposal exists only for the duration of one workflow run.
type RemediationProposal struct {
	Repository       Repository // the fork the branch is pushed to
	Upstream         Repository // the repository the pull request targets
	Kind             RemediationKind
	Files            []FileEdit
	Changes          []Change
	BranchName       string
	CommitMessage    string
	PullRequestTitle string
}

// RemediationDetails holds the kind-specific naming used by the workflow.
type RemediationDetails struct {
	BranchName       string
	CommitMessage    string
	PullRequestTitle string
}

// DefaultRemediationDetails returns the naming for a kind, prefixing branches with the app name.
func DefaultRemediationDetails(kind RemediationKind, appName string) RemediationDetails {
	switch kind {
	case KindPinDependencies:
		return RemediationDetails{
			BranchName:       appName + "/pin-dependencies",
			CommitMessage:    "chore(deps): pin dependency versions",
			PullRequestTitle: "chore(deps): pin dependency versions",
		}
	case KindFixEngines:
		return RemediationDetails{
			BranchName:       appName + "/fix-engines",
			CommitMessage:    "chore: declare node and npm engine ranges",
			PullRequestTitle: "chore: declare node and npm engine ranges",
		}
	default:
		return RemediationDetails{
			BranchName:       appName + "/sort-manifest",
			CommitMessage:    "chore: sort package.json",
			PullRequestTitle: "chore: sort package.json",
		}
	}
}
