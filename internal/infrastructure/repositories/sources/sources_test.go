//go:build unit

package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sources"
	doubles "github.com/rios0rios0/forkfix/test/infrastructure/repositorydoubles"
)

func TestAccountSourceRepository(t *testing.T) {
	t.Parallel()

	t.Run("should list every repository of the account", func(t *testing.T) {
		// given
		host := doubles.NewSpyHostRepository("me")
		host.AccountRepositories = []entities.Repository{{Owner: "me", Name: "a"}, {Owner: "me", Name: "b"}}
		source := sources.NewAccountSourceRepository(repositories.HostClients{Primary: host})

		// when
		repos, err := source.List(context.Background(), repositories.SourceOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, repos, 2)
		assert.Equal(t, sources.AccountSourceName, source.Name())
	})
}

func TestEventsSourceRepository(t *testing.T) {
	t.Parallel()

	t.Run("should resolve event repositories and skip the vanished ones", func(t *testing.T) {
		// given
		host := doubles.NewSpyHostRepository("me")
		host.AddRepository(entities.Repository{Owner: "x", Name: "y", StarCount: 20})
		host.EventKeys = []entities.RepositoryKey{{Owner: "x", Name: "y"}, {Owner: "x", Name: "gone"}}
		source := sources.NewEventsSourceRepository(repositories.HostClients{Primary: host})

		// when
		repos, err := source.List(context.Background(), repositories.SourceOptions{EventsOwner: "x"})

		// then
		require.NoError(t, err)
		require.Len(t, repos, 1)
		assert.Equal(t, 20, repos[0].StarCount)
	})

	t.Run("should require an events owner", func(t *testing.T) {
		// given
		source := sources.NewEventsSourceRepository(repositories.HostClients{Primary: doubles.NewSpyHostRepository("me")})

		// when
		_, err := source.List(context.Background(), repositories.SourceOptions{})

		// then
		require.Error(t, err)
	})
}

func TestLedgerSourceRepository(t *testing.T) {
	t.Parallel()

	t.Run("should list only upstreams recorded as forked", func(t *testing.T) {
		// given
		host := doubles.NewSpyHostRepository("me")
		host.AddRepository(entities.Repository{Owner: "x", Name: "y"})
		host.AddRepository(entities.Repository{Owner: "x", Name: "z"})
		ledger := &doubles.SpyLedgerRepository{}
		ledger.Seed("x", "y", true)
		ledger.Seed("x", "z", false)
		source := sources.NewLedgerSourceRepository(repositories.HostClients{Primary: host}, ledger)

		// when
		repos, err := source.List(context.Background(), repositories.SourceOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, repos, 1)
		assert.Equal(t, "x/y", repos[0].FullName())
	})
}
