package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

const stdinArg = "-"

// ForkController handles the "fork" subcommand.
type ForkController struct {
	command commands.Fork
	stdin   io.Reader
}

// NewForkController creates a new ForkController.
func NewForkController(command commands.Fork) *ForkController {
	return &ForkController{command: command, stdin: os.Stdin}
}

// GetBind returns the Cobra command metadata for the fork controller.
func (it *ForkController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "fork [file|-]",
		Short: "Fork the repositories approved by discover",
		Long: `Read the JSON output of discover from a file, or from stdin when the
argument is "-" or absent, fork every repository with the primary account and
record it in the ledger.`,
	}
}

// Execute forks every listed upstream.
func (it *ForkController) Execute(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	upstreams, err := it.readUpstreams(args)
	if err != nil {
		logger.Errorf("Fork failed: %v", err)
		return
	}

	if _, err = it.command.Execute(context.Background(), upstreams, commands.ForkOptions{DryRun: dryRun}); err != nil {
		logger.Errorf("Fork failed: %v", err)
	}
}

func (it *ForkController) readUpstreams(args []string) ([]entities.RepositoryKey, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == stdinArg {
		data, err = io.ReadAll(it.stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read the repository list: %w", err)
	}

	var upstreams []entities.RepositoryKey
	if err = json.Unmarshal(data, &upstreams); err != nil {
		return nil, fmt.Errorf("failed to parse the repository list: %w", err)
	}
	for _, key := range upstreams {
		if key.Owner == "" || key.Name == "" {
			return nil, fmt.Errorf("invalid repository %q in the list", key.String())
		}
	}
	return upstreams, nil
}
