package sources

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const LedgerSourceName = "ledger"

// LedgerSourceRepository lists the upstream repositories the ledger records as forked.
type LedgerSourceRepository struct {
	host   repositories.HostRepository
	ledger repositories.LedgerRepository
}

// NewLedgerSourceRepository creates the ledger source.
func NewLedgerSourceRepository(
	clients repositories.HostClients,
	ledger repositories.LedgerRepository,
) *LedgerSourceRepository {
	return &LedgerSourceRepository{host: clients.Primary, ledger: ledger}
}

func (it *LedgerSourceRepository) Name() string { return LedgerSourceName }

func (it *LedgerSourceRepository) List(
	ctx context.Context,
	_ repositories.SourceOptions,
) ([]entities.Repository, error) {
	records, err := it.ledger.ListForkedRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forked repositories: %w", err)
	}

	result := make([]entities.Repository, 0, len(records))
	for _, record := range records {
		repo, getErr := it.host.GetRepository(ctx, record.Owner, record.Name)
		if getErr != nil {
			logger.WithField("repository", record.Key().String()).Debugf("Skipping ledger repository: %v", getErr)
			continue
		}
		result = append(result, *repo)
	}
	return result, nil
}
