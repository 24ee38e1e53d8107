//go:build unit

package controllers_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/controllers"
	"github.com/rios0rios0/forkfix/test/domain/commanddoubles"
)

// newCommand builds a cobra command carrying the root persistent flags and the controller's flags.
func newCommand(t *testing.T, controller entities.Controller, flags ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: controller.GetBind().Use}
	cmd.Flags().Bool("dry-run", false, "")
	cmd.Flags().Bool("verbose", false, "")
	if withFlags, ok := controller.(controllers.FlagsController); ok {
		withFlags.AddFlags(cmd)
	}
	require.NoError(t, cmd.ParseFlags(flags))
	return cmd
}

func TestDiscoverController(t *testing.T) {
	t.Parallel()

	t.Run("should print the approved repositories as JSON", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubDiscoverCommand{Report: &commands.DiscoverReport{
			Approved: []entities.RepositoryKey{{Owner: "x", Name: "y"}},
		}}
		controller := controllers.NewDiscoverController(stub)
		var out bytes.Buffer
		controller.SetOutput(&out)
		cmd := newCommand(t, controller, "--owner-type", "org", "--events-owner", "octocat")

		// when
		controller.Execute(cmd, nil)

		// then
		assert.JSONEq(t, `[{"owner":"x","name":"y"}]`, out.String())
		assert.Equal(t, entities.OwnerTypeOrganization, stub.LastOpts.OwnerType)
		assert.Equal(t, "events", stub.LastOpts.Source)
		assert.Equal(t, "octocat", stub.LastOpts.EventsOwner)
	})

	t.Run("should print an empty array when nothing is approved", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubDiscoverCommand{Report: &commands.DiscoverReport{}}
		controller := controllers.NewDiscoverController(stub)
		var out bytes.Buffer
		controller.SetOutput(&out)

		// when
		controller.Execute(newCommand(t, controller), nil)

		// then
		assert.JSONEq(t, `[]`, out.String())
	})

	t.Run("should write the list to the output file", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubDiscoverCommand{Report: &commands.DiscoverReport{
			Approved: []entities.RepositoryKey{{Owner: "x", Name: "y"}},
		}}
		controller := controllers.NewDiscoverController(stub)
		path := filepath.Join(t.TempDir(), "approved.json")

		// when
		controller.Execute(newCommand(t, controller, "--output", path), nil)

		// then
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"owner":"x","name":"y"}]`, string(data))
	})

	t.Run("should not run with an invalid owner type", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubDiscoverCommand{}
		controller := controllers.NewDiscoverController(stub)

		// when
		controller.Execute(newCommand(t, controller, "--owner-type", "team"), nil)

		// then
		assert.Equal(t, 0, stub.ExecuteCallCount)
	})
}

func TestForkController(t *testing.T) {
	t.Parallel()

	t.Run("should read the discover output from stdin", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubForkCommand{}
		controller := controllers.NewForkController(stub)
		controller.SetInput(strings.NewReader(`[{"owner":"x","name":"y"},{"owner":"x","name":"z"}]`))

		// when
		controller.Execute(newCommand(t, controller, "--dry-run"), []string{"-"})

		// then
		assert.Equal(t, 1, stub.ExecuteCallCount)
		assert.Len(t, stub.LastUpstreams, 2)
		assert.True(t, stub.LastOpts.DryRun)
	})

	t.Run("should read the discover output from a file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "approved.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"owner":"x","name":"y"}]`), 0o600))
		stub := &commanddoubles.StubForkCommand{}
		controller := controllers.NewForkController(stub)

		// when
		controller.Execute(newCommand(t, controller), []string{path})

		// then
		assert.Equal(t, []entities.RepositoryKey{{Owner: "x", Name: "y"}}, stub.LastUpstreams)
	})

	t.Run("should not fork from an invalid list", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubForkCommand{}
		controller := controllers.NewForkController(stub)
		controller.SetInput(strings.NewReader(`[{"owner":"x"}]`))

		// when
		controller.Execute(newCommand(t, controller), nil)

		// then
		assert.Equal(t, 0, stub.ExecuteCallCount)
	})
}

func TestProposeController(t *testing.T) {
	t.Parallel()

	t.Run("should run the workflow on every argument even when one fails", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{ExecuteErr: errors.New("boom")}
		controller := controllers.NewProposeController(stub)

		// when
		controller.Execute(newCommand(t, controller), []string{"me/a", "me/b"})

		// then
		assert.Equal(t, []entities.RepositoryKey{{Owner: "me", Name: "a"}, {Owner: "me", Name: "b"}}, stub.ExecutedForks())
	})

	t.Run("should resolve the forks from a source", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{ResolvedForks: []entities.RepositoryKey{{Owner: "me", Name: "a"}}}
		controller := controllers.NewProposeController(stub)

		// when
		controller.Execute(newCommand(t, controller, "--source", "ledger", "--dry-run"), nil)

		// then
		assert.Equal(t, "ledger", stub.LastSource)
		assert.Len(t, stub.ExecutedForks(), 1)
		assert.True(t, stub.LastOpts.DryRun)
	})

	t.Run("should refuse both arguments and a source", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		controller := controllers.NewProposeController(stub)

		// when
		controller.Execute(newCommand(t, controller, "--source", "ledger"), []string{"me/a"})

		// then
		assert.Empty(t, stub.ExecutedForks())
		assert.Empty(t, stub.LastSource)
	})

	t.Run("should refuse a malformed fork", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		controller := controllers.NewProposeController(stub)

		// when
		controller.Execute(newCommand(t, controller), []string{"not-a-key"})

		// then
		assert.Empty(t, stub.ExecutedForks())
	})
}

func TestReconcileController(t *testing.T) {
	t.Parallel()

	t.Run("should pass the pass selection and dry-run flags", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubReconcileCommand{}
		controller := controllers.NewReconcileController(stub)

		// when
		controller.Execute(newCommand(t, controller, "--skip-cleanup", "--dry-run"), nil)

		// then
		assert.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, commands.ReconcileOptions{SkipCleanup: true, DryRun: true}, stub.LastOpts)
	})
}

func TestNewControllers(t *testing.T) {
	t.Parallel()

	t.Run("should expose every subcommand", func(t *testing.T) {
		t.Parallel()

		// given
		propose := &commanddoubles.StubProposeCommand{}

		// when
		all := controllers.NewControllers(
			controllers.NewDiscoverController(&commanddoubles.StubDiscoverCommand{}),
			controllers.NewForkController(&commanddoubles.StubForkCommand{}),
			controllers.NewProposeController(propose),
			controllers.NewReconcileController(&commanddoubles.StubReconcileCommand{}),
			controllers.NewServeController(propose, repositories.HostClients{}, &entities.Settings{}),
		)

		// then
		uses := make([]string, 0, len(*all))
		for _, controller := range *all {
			uses = append(uses, strings.Fields(controller.GetBind().Use)[0])
		}
		assert.Equal(t, []string{"discover", "fork", "propose", "reconcile", "serve"}, uses)
	})
}
