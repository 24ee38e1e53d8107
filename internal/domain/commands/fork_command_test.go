//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

func TestForkCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should fork every upstream and record it as forked", func(t *testing.T) {
		// given
		f := newFixture()
		command := commands.NewForkCommand(f.clients(), f.ledger)
		upstreams := []entities.RepositoryKey{{Owner: "x", Name: "y"}, {Owner: "x", Name: "z"}}

		// when
		report, err := command.Execute(context.Background(), upstreams, commands.ForkOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.RepositoryKey{
			{Owner: primaryLogin, Name: "y"}, {Owner: primaryLogin, Name: "z"},
		}, report.Forked)
		require.Len(t, f.ledger.RepositoryRows, 2)
		assert.True(t, f.ledger.RepositoryRows[0].IsForked)
		assert.Equal(t, "x", f.ledger.RepositoryRows[0].Owner)
	})

	t.Run("should not record a failed fork", func(t *testing.T) {
		// given
		f := newFixture()
		f.primary.CreateForkErr = errors.New("403")
		command := commands.NewForkCommand(f.clients(), f.ledger)

		// when
		report, err := command.Execute(
			context.Background(), []entities.RepositoryKey{{Owner: "x", Name: "y"}}, commands.ForkOptions{},
		)

		// then
		require.NoError(t, err)
		assert.Len(t, report.Failed, 1)
		assert.Empty(t, f.ledger.RepositoryRows)
	})

	t.Run("should not fork in dry-run mode", func(t *testing.T) {
		// given
		f := newFixture()
		command := commands.NewForkCommand(f.clients(), f.ledger)

		// when
		report, err := command.Execute(
			context.Background(), []entities.RepositoryKey{{Owner: "x", Name: "y"}}, commands.ForkOptions{DryRun: true},
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, report.Forked)
		assert.Empty(t, f.primary.Forked)
	})
}
