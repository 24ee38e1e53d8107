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
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sources"
)

// DiscoverController handles the "discover" subcommand.
type DiscoverController struct {
	command commands.Discover
	stdout  io.Writer
}

// NewDiscoverController creates a new DiscoverController.
func NewDiscoverController(command commands.Discover) *DiscoverController {
	return &DiscoverController{command: command, stdout: os.Stdout}
}

// GetBind returns the Cobra command metadata for the discover controller.
func (it *DiscoverController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "discover",
		Short: "List the repositories worth forking",
		Long: `List candidate repositories, filter them on metadata then on their
package.json, package-lock.json and workflows, and keep those for which at
least one remediation would change something.

Prints the approved repositories as a JSON array of {"owner","name"}
objects, which the fork subcommand reads.`,
	}
}

// AddFlags adds the discover-specific flags to the given Cobra command.
func (it *DiscoverController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", sources.EventsSourceName, "Candidate origin (account, events, ledger)")
	cmd.Flags().String("owner-type", "", "Only keep repositories owned by a user or an organization")
	cmd.Flags().String("events-owner", "", "Login whose public events feed the events source")
	cmd.Flags().StringP("output", "o", "", "Write the approved list to this file instead of stdout")
}

// Execute runs the discovery and writes the approved list.
func (it *DiscoverController) Execute(cmd *cobra.Command, _ []string) {
	source, _ := cmd.Flags().GetString("source")
	rawOwnerType, _ := cmd.Flags().GetString("owner-type")
	eventsOwner, _ := cmd.Flags().GetString("events-owner")
	output, _ := cmd.Flags().GetString("output")

	ownerType, err := entities.ParseOwnerType(rawOwnerType)
	if err != nil {
		logger.Errorf("Discover failed: %v", err)
		return
	}

	report, err := it.command.Execute(context.Background(), commands.DiscoverOptions{
		Source:      source,
		OwnerType:   ownerType,
		EventsOwner: eventsOwner,
	})
	if err != nil {
		logger.Errorf("Discover failed: %v", err)
		return
	}

	if err = it.writeApproved(output, report.Approved); err != nil {
		logger.Errorf("Discover failed: %v", err)
	}
}

func (it *DiscoverController) writeApproved(output string, approved []entities.RepositoryKey) error {
	if approved == nil {
		approved = []entities.RepositoryKey{}
	}
	data, err := json.MarshalIndent(approved, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if output == "" {
		_, err = it.stdout.Write(data)
		return err
	}
	if err = os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", output, err)
	}
	logger.Infof("Wrote %d repositories to %s", len(approved), output)
	return nil
}
