package entities

// ProposalState is the ledger's view of a proposal's pull request.
type ProposalState string

const (
	StateOpened ProposalState = "opened"
	StateClosed ProposalState = "closed"
)

// IsTerminal reports whether no further state change is expected.
func (s ProposalState) IsTerminal() bool {
	return s == StateClosed
}

// ProposalStateFromHost maps the host's pull request state onto the ledger states.
func ProposalStateFromHost(hostState string) ProposalState {
	if hostState == "closed" {
		return StateClosed
	}
	return StateOpened
}

// LedgerRepositoryRecord is a row of the repositories table.
type LedgerRepositoryRecord struct {
	ID       int64
	Owner    string
	Name     string
	IsForked bool
}

// Key returns the upstream repository identity of the row.
func (r LedgerRepositoryRecord) Key() RepositoryKey {
	return RepositoryKey{Owner: r.Owner, Name: r.Name}
}

// LedgerProposalRecord is a row of the pull_requests table. Rows are never deleted.
type LedgerProposalRecord struct {
	ID                int64
	RepositoryID      int64
	Kind              RemediationKind
	PullRequestURL    string
	PullRequestNumber int
	State             ProposalState
	Merged            bool
}

// IsRejected reports a proposal that was closed without being merged.
func (p LedgerProposalRecord) IsRejected() bool {
	return p.State == StateClosed && !p.Merged
}

// TrackedProposal joins a proposal with the repository row it belongs to.
type TrackedProposal struct {
	Repository LedgerRepositoryRecord
	Proposal   LedgerProposalRecord
}

// LedgerSnapshot is read once per repository per run and shared by every detector,
// so that the gate is consistent within a run.
type LedgerSnapshot struct {
	Repository *LedgerRepositoryRecord
	Proposals  []LedgerProposalRecord
}

// CanPropose returns false iff a proposal of this kind was already closed without merging.
// Missing, merged and still-open records do not block re-evaluation.
func (s LedgerSnapshot) CanPropose(kind RemediationKind) bool {
	for _, proposal := range s.Proposals {
		if proposal.Kind == kind && proposal.IsRejected() {
			return false
		}
	}
	return true
}

// HasOpenProposal reports a non-terminal proposal of this kind.
func (s LedgerSnapshot) HasOpenProposal(kind RemediationKind) bool {
	for _, proposal := range s.Proposals {
		if proposal.Kind == kind && !proposal.State.IsTerminal() {
			return true
		}
	}
	return false
}

// IsForked reports whether the ledger records a live fork.
func (s LedgerSnapshot) IsForked() bool {
	return s.Repository != nil && s.Repository.IsForked
}
