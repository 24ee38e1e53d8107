//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// SpyLedgerRepository implements repositories.LedgerRepository in memory with
// the same keying and conflict rules as the SQL ledger.
type SpyLedgerRepository struct {
	mu sync.Mutex

	RepositoryRows []entities.LedgerRepositoryRecord
	ProposalRows   []entities.LedgerProposalRecord

	// FailWith makes every call return the error.
	FailWith error
}

var _ repositories.LedgerRepository = (*SpyLedgerRepository)(nil)

// Seed inserts a repository row with its proposals and returns the row id.
func (s *SpyLedgerRepository) Seed(
	owner, name string, isForked bool, proposals ...entities.LedgerProposalRecord,
) int64 {
	record, _ := s.UpsertRepository(context.Background(), owner, name, isForked)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, proposal := range proposals {
		proposal.ID = int64(len(s.ProposalRows) + 1)
		proposal.RepositoryID = record.ID
		s.ProposalRows = append(s.ProposalRows, proposal)
	}
	return record.ID
}

func (s *SpyLedgerRepository) FindRepository(
	_ context.Context, owner, name string,
) (*entities.LedgerRepositoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for _, row := range s.RepositoryRows {
		if row.Owner == owner && row.Name == name {
			return &row, nil
		}
	}
	return nil, fmt.Errorf("repository %s/%s: %w", owner, name, entities.ErrNotFound)
}

func (s *SpyLedgerRepository) FindProposals(
	_ context.Context, repositoryID int64,
) ([]entities.LedgerProposalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var proposals []entities.LedgerProposalRecord
	for _, row := range s.ProposalRows {
		if row.RepositoryID == repositoryID {
			proposals = append(proposals, row)
		}
	}
	return proposals, nil
}

func (s *SpyLedgerRepository) UpsertRepository(
	_ context.Context, owner, name string, isForked bool,
) (*entities.LedgerRepositoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for i, row := range s.RepositoryRows {
		if row.Owner == owner && row.Name == name {
			s.RepositoryRows[i].IsForked = isForked
			updated := s.RepositoryRows[i]
			return &updated, nil
		}
	}
	row := entities.LedgerRepositoryRecord{
		ID: int64(len(s.RepositoryRows) + 1), Owner: owner, Name: name, IsForked: isForked,
	}
	s.RepositoryRows = append(s.RepositoryRows, row)
	return &row, nil
}

func (s *SpyLedgerRepository) AppendProposal(
	_ context.Context, record entities.LedgerProposalRecord,
) (*entities.LedgerProposalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for _, row := range s.ProposalRows {
		if row.RepositoryID == record.RepositoryID && row.Kind == record.Kind && !row.State.IsTerminal() {
			return nil, fmt.Errorf("open %s proposal: %w", record.Kind, entities.ErrConflict)
		}
	}
	record.ID = int64(len(s.ProposalRows) + 1)
	s.ProposalRows = append(s.ProposalRows, record)
	return &record, nil
}

func (s *SpyLedgerRepository) ListOpenProposals(_ context.Context) ([]entities.TrackedProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var tracked []entities.TrackedProposal
	for _, proposal := range s.ProposalRows {
		if proposal.State.IsTerminal() {
			continue
		}
		for _, row := range s.RepositoryRows {
			if row.ID == proposal.RepositoryID {
				tracked = append(tracked, entities.TrackedProposal{Repository: row, Proposal: proposal})
			}
		}
	}
	return tracked, nil
}

func (s *SpyLedgerRepository) UpdateProposal(
	_ context.Context, id int64, state entities.ProposalState, merged bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i, row := range s.ProposalRows {
		if row.ID == id {
			s.ProposalRows[i].State = state
			s.ProposalRows[i].Merged = merged
			return nil
		}
	}
	return fmt.Errorf("proposal %d: %w", id, entities.ErrNotFound)
}

func (s *SpyLedgerRepository) ListForkedRepositories(_ context.Context) ([]entities.LedgerRepositoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var forked []entities.LedgerRepositoryRecord
	for _, row := range s.RepositoryRows {
		if row.IsForked {
			forked = append(forked, row)
		}
	}
	return forked, nil
}

func (s *SpyLedgerRepository) SetForked(_ context.Context, repositoryID int64, isForked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i, row := range s.RepositoryRows {
		if row.ID == repositoryID {
			s.RepositoryRows[i].IsForked = isForked
			return nil
		}
	}
	return fmt.Errorf("repository %d: %w", repositoryID, entities.ErrNotFound)
}
