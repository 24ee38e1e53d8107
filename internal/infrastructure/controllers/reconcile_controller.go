package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// ReconcileController handles the "reconcile" subcommand.
type ReconcileController struct {
	command commands.Reconcile
}

// NewReconcileController creates a new ReconcileController.
func NewReconcileController(command commands.Reconcile) *ReconcileController {
	return &ReconcileController{command: command}
}

// GetBind returns the Cobra command metadata for the reconcile controller.
func (it *ReconcileController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "reconcile",
		Short: "Sync proposal states and delete rejected forks",
		Long: `Align the ledger with the live state of every open proposal, then delete
the forks whose every proposal was closed without being merged.

This is the command intended to be used in a cronjob.`,
	}
}

// AddFlags adds the reconcile-specific flags to the given Cobra command.
func (it *ReconcileController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skip-sync", false, "Do not refresh the proposal states")
	cmd.Flags().Bool("skip-cleanup", false, "Do not delete rejected forks")
}

// Execute runs the reconciliation.
func (it *ReconcileController) Execute(cmd *cobra.Command, _ []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipSync, _ := cmd.Flags().GetBool("skip-sync")
	skipCleanup, _ := cmd.Flags().GetBool("skip-cleanup")

	if _, err := it.command.Execute(context.Background(), commands.ReconcileOptions{
		SkipSync:    skipSync,
		SkipCleanup: skipCleanup,
		DryRun:      dryRun,
	}); err != nil {
		logger.Errorf("Reconcile failed: %v", err)
	}
}
