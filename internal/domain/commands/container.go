package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register shared pipeline stages
	if err := container.Provide(NewAnalysisFetcher); err != nil {
		return err
	}
	if err := container.Provide(NewRemediationEngine); err != nil {
		return err
	}

	// Register command constructors
	if err := container.Provide(NewDiscoverCommand); err != nil {
		return err
	}
	if err := container.Provide(NewForkCommand); err != nil {
		return err
	}
	if err := container.Provide(NewProposeCommand); err != nil {
		return err
	}
	if err := container.Provide(NewReconcileCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *DiscoverCommand) Discover {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ForkCommand) Fork {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ProposeCommand) Propose {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ReconcileCommand) Reconcile {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
