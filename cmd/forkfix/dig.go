package main

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/rios0rios0/forkfix/internal"
)

func injectAppContext() *internal.AppInternal {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	// Settings and the ledger are built here, so a missing token surfaces as a plain error.
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		logger.Fatalf("Failed to initialize 'forkfix': %s", dig.RootCause(err))
	}

	return appInternal
}
