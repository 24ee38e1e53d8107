package repositories

import (
	"context"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// LedgerRepository is the persistence boundary recording forks and proposals.
// Upserts are keyed by (owner, name) and (repository id, kind).
type LedgerRepository interface {
	// FindRepository returns the row for an upstream repository or entities.ErrNotFound.
	FindRepository(ctx context.Context, owner, name string) (*entities.LedgerRepositoryRecord, error)

	// FindProposals returns every proposal ever recorded for a repository row.
	FindProposals(ctx context.Context, repositoryID int64) ([]entities.LedgerProposalRecord, error)

	// UpsertRepository creates or updates the row keyed by (owner, name).
	UpsertRepository(ctx context.Context, owner, name string, isForked bool) (*entities.LedgerRepositoryRecord, error)

	// AppendProposal inserts a proposal. A second non-terminal proposal for the
	// same (repository, kind) yields entities.ErrConflict.
	AppendProposal(ctx context.Context, record entities.LedgerProposalRecord) (*entities.LedgerProposalRecord, error)

	// ListOpenProposals returns every non-terminal proposal with its repository row.
	ListOpenProposals(ctx context.Context) ([]entities.TrackedProposal, error)

	// UpdateProposal stores the live state of a proposal.
	UpdateProposal(ctx context.Context, id int64, state entities.ProposalState, merged bool) error

	// ListForkedRepositories returns the rows with a live fork.
	ListForkedRepositories(ctx context.Context) ([]entities.LedgerRepositoryRecord, error)

	// SetForked flips the fork flag of a row.
	SetForked(ctx context.Context, repositoryID int64, isForked bool) error
}
