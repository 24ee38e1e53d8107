//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// StubSourceRepository returns a fixed candidate list.
type StubSourceRepository struct {
	SourceName   string
	Repositories []entities.Repository
	ListErr      error
	LastOpts     repositories.SourceOptions
}

var _ repositories.SourceRepository = (*StubSourceRepository)(nil)

func (s *StubSourceRepository) Name() string { return s.SourceName }

func (s *StubSourceRepository) List(_ context.Context, opts repositories.SourceOptions) ([]entities.Repository, error) {
	s.LastOpts = opts
	return s.Repositories, s.ListErr
}
