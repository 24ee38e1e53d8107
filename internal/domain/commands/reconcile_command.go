package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/telemetry"
)

// Reconcile is the interface for the scheduled ledger sweep.
type Reconcile interface {
	Execute(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error)
}

// ReconcileOptions selects the passes to run.
type ReconcileOptions struct {
	SkipSync    bool
	SkipCleanup bool
	DryRun      bool
}

// ReconcileReport counts what each pass changed.
type ReconcileReport struct {
	ProposalsChecked int
	ProposalsUpdated int
	ForksDeleted     []entities.RepositoryKey
	Errors           int
}

// ReconcileCommand aligns the ledger with the host and removes forks whose
// every proposal was rejected.
type ReconcileCommand struct {
	clients repositories.HostClients
	ledger  repositories.LedgerRepository
	metrics *telemetry.Metrics
}

// NewReconcileCommand creates a new ReconcileCommand.
func NewReconcileCommand(
	clients repositories.HostClients,
	ledger repositories.LedgerRepository,
	metrics *telemetry.Metrics,
) *ReconcileCommand {
	return &ReconcileCommand{clients: clients, ledger: ledger, metrics: metrics}
}

// Execute runs the proposal sync, then the fork cleanup.
func (it *ReconcileCommand) Execute(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	if !opts.SkipSync {
		if err := it.syncProposals(ctx, opts, report); err != nil {
			return report, err
		}
	}
	if !opts.SkipCleanup {
		if err := it.cleanupForks(ctx, opts, report); err != nil {
			return report, err
		}
	}

	logger.Infof(
		"[reconcile] %d proposal(s) checked, %d updated, %d fork(s) deleted, %d error(s)",
		report.ProposalsChecked, report.ProposalsUpdated, len(report.ForksDeleted), report.Errors,
	)
	return report, nil
}

// syncProposals only writes the ledger; the host is left untouched.
func (it *ReconcileCommand) syncProposals(ctx context.Context, opts ReconcileOptions, report *ReconcileReport) error {
	tracked, err := it.ledger.ListOpenProposals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open proposals: %w", err)
	}

	for _, item := range tracked {
		report.ProposalsChecked++
		entry := logger.WithFields(logger.Fields{
			"repository": item.Repository.Key().String(),
			"kind":       item.Proposal.Kind,
		})

		upstream := entities.Repository{Owner: item.Repository.Owner, Name: item.Repository.Name}
		pr, getErr := it.clients.Primary.GetPullRequest(ctx, upstream, item.Proposal.PullRequestNumber)
		if getErr != nil {
			entry.Warnf("[reconcile] Cannot read pull request #%d: %v", item.Proposal.PullRequestNumber, getErr)
			report.Errors++
			continue
		}

		state := entities.ProposalStateFromHost(pr.State)
		if state == item.Proposal.State && pr.Merged == item.Proposal.Merged {
			continue
		}
		if opts.DryRun {
			entry.Infof("[reconcile] Dry run: would mark #%d %s (merged=%t)", pr.Number, state, pr.Merged)
			continue
		}
		if updateErr := it.ledger.UpdateProposal(ctx, item.Proposal.ID, state, pr.Merged); updateErr != nil {
			entry.Errorf("[reconcile] %v", updateErr)
			report.Errors++
			continue
		}

		report.ProposalsUpdated++
		it.metrics.IncReconcileUpdate()
		entry.Infof("[reconcile] Marked #%d %s (merged=%t)", pr.Number, state, pr.Merged)
	}
	return nil
}

// cleanupForks deletes a fork only when it has proposals and all were rejected.
func (it *ReconcileCommand) cleanupForks(ctx context.Context, opts ReconcileOptions, report *ReconcileReport) error {
	records, err := it.ledger.ListForkedRepositories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list forked repositories: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	login, err := it.clients.Primary.GetAuthenticatedUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve the fork owner: %w", err)
	}

	for _, record := range records {
		entry := logger.WithField("repository", record.Key().String())
		proposals, findErr := it.ledger.FindProposals(ctx, record.ID)
		if findErr != nil {
			entry.Errorf("[reconcile] %v", findErr)
			report.Errors++
			continue
		}
		if !allRejected(proposals) {
			continue
		}

		fork := entities.Repository{Owner: login, Name: record.Name}
		if opts.DryRun {
			entry.Infof("[reconcile] Dry run: would delete %s", fork.FullName())
			continue
		}
		if deleteErr := it.clients.Primary.DeleteRepository(ctx, fork); deleteErr != nil &&
			!errors.Is(deleteErr, entities.ErrNotFound) {
			entry.Errorf("[reconcile] %v", deleteErr)
			report.Errors++
			continue
		}
		if setErr := it.ledger.SetForked(ctx, record.ID, false); setErr != nil {
			entry.Errorf("[reconcile] Fork deleted but not recorded: %v", setErr)
			report.Errors++
			continue
		}

		report.ForksDeleted = append(report.ForksDeleted, record.Key())
		it.metrics.IncForkDeleted()
		entry.Infof("[reconcile] Deleted fork %s", fork.FullName())
	}
	return nil
}

func allRejected(proposals []entities.LedgerProposalRecord) bool {
	if len(proposals) == 0 {
		return false
	}
	for _, proposal := range proposals {
		if !proposal.IsRejected() {
			return false
		}
	}
	return true
}
