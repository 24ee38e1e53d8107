package entities

// LoadEnvironmentWith exports loadEnvironment for testing.
var LoadEnvironmentWith = loadEnvironment //nolint:gochecknoglobals // test export
