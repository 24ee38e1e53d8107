package controllers

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// ProposeController handles the "propose" subcommand.
type ProposeController struct {
	command commands.Propose
}

// NewProposeController creates a new ProposeController.
func NewProposeController(command commands.Propose) *ProposeController {
	return &ProposeController{command: command}
}

// GetBind returns the Cobra command metadata for the propose controller.
func (it *ProposeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "propose [owner/name ...]",
		Short: "Open remediation pull requests from forks",
		Long: `Run the remediation workflow on forks of the primary account: detect the
changes on the fork, push one branch per remediation kind and open a pull
request against the upstream repository with the bot account.

Forks are given as owner/name arguments, or resolved with --source.`,
	}
}

// AddFlags adds the propose-specific flags to the given Cobra command.
func (it *ProposeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Resolve the forks from a source instead of arguments (account, ledger)")
}

// Execute runs the workflow on every fork. A failing fork does not stop the others.
func (it *ProposeController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	source, _ := cmd.Flags().GetString("source")

	forks, err := it.resolveForks(ctx, source, args)
	if err != nil {
		logger.Errorf("Propose failed: %v", err)
		return
	}

	opened := 0
	for _, fork := range forks {
		report, execErr := it.command.Execute(ctx, fork, commands.ProposeOptions{DryRun: dryRun})
		if execErr != nil {
			logger.WithField("repository", fork.String()).Errorf("[propose] %v", execErr)
			continue
		}
		opened += len(report.Opened())
	}
	logger.Infof("[propose] %d fork(s) processed, %d pull request(s) opened", len(forks), opened)
}

func (it *ProposeController) resolveForks(
	ctx context.Context,
	source string,
	args []string,
) ([]entities.RepositoryKey, error) {
	switch {
	case source != "" && len(args) > 0:
		return nil, errors.New("pass either forks or --source, not both")
	case source != "":
		return it.command.ResolveForks(ctx, source)
	case len(args) == 0:
		return nil, errors.New("no fork given")
	}

	forks := make([]entities.RepositoryKey, 0, len(args))
	for _, arg := range args {
		key, err := entities.ParseRepositoryKey(arg)
		if err != nil {
			return nil, err
		}
		forks = append(forks, key)
	}
	return forks, nil
}
