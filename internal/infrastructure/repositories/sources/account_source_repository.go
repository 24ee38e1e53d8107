package sources

import (
	"context"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const AccountSourceName = "account"

// AccountSourceRepository lists the repositories of the primary account.
type AccountSourceRepository struct {
	host repositories.HostRepository
}

// NewAccountSourceRepository creates the account source on the primary identity.
func NewAccountSourceRepository(clients repositories.HostClients) *AccountSourceRepository {
	return &AccountSourceRepository{host: clients.Primary}
}

func (it *AccountSourceRepository) Name() string { return AccountSourceName }

func (it *AccountSourceRepository) List(
	ctx context.Context,
	_ repositories.SourceOptions,
) ([]entities.Repository, error) {
	return it.host.ListAccountRepositories(ctx)
}
