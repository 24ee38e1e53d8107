package sources

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const EventsSourceName = "events"

// EventsSourceRepository lists the repositories an owner recently acted on.
type EventsSourceRepository struct {
	host repositories.HostRepository
}

// NewEventsSourceRepository creates the events source on the primary identity.
func NewEventsSourceRepository(clients repositories.HostClients) *EventsSourceRepository {
	return &EventsSourceRepository{host: clients.Primary}
}

func (it *EventsSourceRepository) Name() string { return EventsSourceName }

// List resolves every repository referenced by the owner's events. Repositories
// that disappeared since the event are skipped.
func (it *EventsSourceRepository) List(
	ctx context.Context,
	opts repositories.SourceOptions,
) ([]entities.Repository, error) {
	if opts.EventsOwner == "" {
		return nil, errors.New("the events source needs an events owner")
	}

	keys, err := it.host.ListEventRepositories(ctx, opts.EventsOwner, opts.OwnerType)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]entities.Repository, 0, len(keys))
	for _, key := range keys {
		repo, getErr := it.host.GetRepository(ctx, key.Owner, key.Name)
		if getErr != nil {
			logger.WithField("repository", key.String()).Debugf("Skipping event repository: %v", getErr)
			continue
		}
		result = append(result, *repo)
	}
	return result, nil
}
