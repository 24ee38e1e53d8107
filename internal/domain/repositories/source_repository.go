package repositories

import (
	"context"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// SourceOptions parameterises a repository listing.
type SourceOptions struct {
	EventsOwner string
	OwnerType   entities.OwnerType
}

// SourceRepository produces candidate repositories from one origin.
type SourceRepository interface {
	// Name returns the origin identifier ("account", "events", "ledger").
	Name() string

	// List returns the candidates of this origin.
	List(ctx context.Context, opts SourceOptions) ([]entities.Repository, error)
}
