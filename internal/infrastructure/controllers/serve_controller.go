package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const shutdownTimeout = 30 * time.Second

// ServeController handles the "serve" subcommand (webhook intake).
type ServeController struct {
	command  commands.Propose
	clients  repositories.HostClients
	settings *entities.Settings
}

// NewServeController creates a new ServeController.
func NewServeController(
	command commands.Propose,
	clients repositories.HostClients,
	settings *entities.Settings,
) *ServeController {
	return &ServeController{command: command, clients: clients, settings: settings}
}

// GetBind returns the Cobra command metadata for the serve controller.
func (it *ServeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "serve",
		Short: "Run the remediation workflow on webhook events",
		Long: `Serve POST /webhook for the host's repository and fork events. Every new
fork of the primary account runs the remediation workflow in the background.

Also serves GET /health and GET /metrics. Requires WEBHOOK_SECRET.`,
	}
}

// AddFlags adds the serve-specific flags to the given Cobra command.
func (it *ServeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", ":8080", "Listen address")
}

// Execute serves until SIGINT or SIGTERM.
func (it *ServeController) Execute(cmd *cobra.Command, _ []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	addr, _ := cmd.Flags().GetString("addr")

	if err := it.serve(addr, dryRun); err != nil {
		logger.Errorf("Serve failed: %v", err)
	}
}

func (it *ServeController) serve(addr string, dryRun bool) error {
	if it.settings.Environment.WebhookSecret == "" {
		return fmt.Errorf("%w: WEBHOOK_SECRET", entities.ErrMissingConfiguration)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	owner, err := it.clients.Primary.GetAuthenticatedUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve the fork owner: %w", err)
	}

	server := NewWebhookServer(
		it.command,
		[]byte(it.settings.Environment.WebhookSecret),
		owner,
		commands.ProposeOptions{DryRun: dryRun},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start(addr)
	}()

	select {
	case err = <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("[serve] Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
