package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// Fork is the interface for the downstream forking step.
type Fork interface {
	Execute(ctx context.Context, upstreams []entities.RepositoryKey, opts ForkOptions) (*ForkReport, error)
}

// ForkOptions holds runtime options for a forking run.
type ForkOptions struct {
	DryRun bool
}

// ForkReport lists the forks created and the upstreams that failed.
type ForkReport struct {
	Forked []entities.RepositoryKey
	Failed []entities.RepositoryKey
}

// ForkCommand forks approved upstreams with the primary account and records them.
type ForkCommand struct {
	clients repositories.HostClients
	ledger  repositories.LedgerRepository
}

// NewForkCommand creates a new ForkCommand.
func NewForkCommand(clients repositories.HostClients, ledger repositories.LedgerRepository) *ForkCommand {
	return &ForkCommand{clients: clients, ledger: ledger}
}

// Execute forks every upstream. A failure only affects its own upstream.
func (it *ForkCommand) Execute(
	ctx context.Context,
	upstreams []entities.RepositoryKey,
	opts ForkOptions,
) (*ForkReport, error) {
	report := &ForkReport{}
	for _, key := range upstreams {
		entry := logger.WithField("repository", key.String())
		if opts.DryRun {
			entry.Infof("[fork] Dry run: would fork and record %s", key)
			continue
		}

		fork, err := it.clients.Primary.CreateFork(ctx, entities.Repository{Owner: key.Owner, Name: key.Name})
		if err != nil {
			entry.Errorf("[fork] %v", err)
			report.Failed = append(report.Failed, key)
			continue
		}
		if _, err = it.ledger.UpsertRepository(ctx, key.Owner, key.Name, true); err != nil {
			entry.Errorf("[fork] Forked to %s but not recorded: %v", fork.FullName(), err)
			report.Failed = append(report.Failed, key)
			continue
		}

		entry.Infof("[fork] Forked to %s", fork.FullName())
		report.Forked = append(report.Forked, fork.Key())
	}

	logger.Infof("[fork] %d forked, %d failed", len(report.Forked), len(report.Failed))
	return report, nil
}
