package entities

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"
)

// ConfigPathEnv names the environment variable pointing at the options file.
const ConfigPathEnv = "FORKFIX_CONFIG"

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(newSettingsFromProcess)
}

// newSettingsFromProcess resolves the options file from FORKFIX_CONFIG or the
// default locations; a missing file falls back to the default options.
func newSettingsFromProcess() (*Settings, error) {
	path := os.Getenv(ConfigPathEnv)
	if path == "" {
		if found, err := FindConfigFile(); err == nil {
			path = found
		}
	}
	if path != "" {
		logger.Infof("Using config file: %s", path)
	}
	return NewSettings(context.Background(), path)
}
