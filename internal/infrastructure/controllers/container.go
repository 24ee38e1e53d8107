package controllers

import (
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// FlagsController is implemented by controllers with subcommand-specific flags.
type FlagsController interface {
	AddFlags(cmd *cobra.Command)
}

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewDiscoverController); err != nil {
		return err
	}
	if err := container.Provide(NewForkController); err != nil {
		return err
	}
	if err := container.Provide(NewProposeController); err != nil {
		return err
	}
	if err := container.Provide(NewReconcileController); err != nil {
		return err
	}
	if err := container.Provide(NewServeController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	discoverController *DiscoverController,
	forkController *ForkController,
	proposeController *ProposeController,
	reconcileController *ReconcileController,
	serveController *ServeController,
) *[]entities.Controller {
	return &[]entities.Controller{
		discoverController,
		forkController,
		proposeController,
		reconcileController,
		serveController,
	}
}
