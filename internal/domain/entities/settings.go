package entities

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sethvargo/go-envconfig"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMinStars      = 10
	DefaultStalenessDays = 183
	DefaultAppName       = "forkfix"
)

// Environment is read once at process start. A missing required value is fatal.
type Environment struct {
	GitHubToken   string        `env:"GITHUB_TOKEN,required"`
	BotToken      string        `env:"BOT_TOKEN,required"`
	LedgerURL     string        `env:"LEDGER_URL,required"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
	APIURL        string        `env:"GITHUB_API_URL"`
	AppName       string        `env:"APP_NAME,default=forkfix"`
	RetryMax      int           `env:"HTTP_RETRY_MAX,default=3"`
	RetryWait     time.Duration `env:"HTTP_RETRY_WAIT,default=2s"`
	Concurrency   int           `env:"CONCURRENCY,default=8"`
}

// Options is the optional YAML file tuning the pipeline.
type Options struct {
	MinStars      int                           `yaml:"min_stars"`
	StalenessDays int                           `yaml:"staleness_days"`
	Kinds         []string                      `yaml:"kinds"`
	Remediations  map[string]RemediationOptions `yaml:"remediations"`
}

// RemediationOptions overrides the kind-specific naming.
type RemediationOptions struct {
	BranchName       string `yaml:"branch_name"`
	CommitMessage    string `yaml:"commit_message"`
	PullRequestTitle string `yaml:"pull_request_title"`
}

// Settings aggregates the environment and the file options.
type Settings struct {
	Environment Environment
	Options     Options
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// LoadEnvironment processes the process environment into an Environment.
func LoadEnvironment(ctx context.Context) (*Environment, error) {
	return loadEnvironment(ctx, envconfig.OsLookuper())
}

func loadEnvironment(ctx context.Context, lookuper envconfig.Lookuper) (*Environment, error) {
	var env Environment
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfiguration, err)
	}
	return &env, nil
}

// NewSettings loads the environment and, when path is not empty, the YAML options.
func NewSettings(ctx context.Context, path string) (*Settings, error) {
	env, err := LoadEnvironment(ctx)
	if err != nil {
		return nil, err
	}

	options := DefaultOptions()
	if path != "" {
		loaded, loadErr := LoadOptions(path)
		if loadErr != nil {
			return nil, loadErr
		}
		options = *loaded
	}

	return &Settings{Environment: *env, Options: options}, nil
}

// DefaultOptions returns the options used when no file is present.
func DefaultOptions() Options {
	return Options{
		MinStars:      DefaultMinStars,
		StalenessDays: DefaultStalenessDays,
	}
}

// LoadOptions reads and parses an options file, expanding ${ENV} references.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return ParseOptions(data)
}

// ParseOptions parses YAML options, fills defaults and validates them.
func ParseOptions(data []byte) (*Options, error) {
	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	options := DefaultOptions()
	if err := yaml.Unmarshal([]byte(expanded), &options); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if options.MinStars == 0 {
		options.MinStars = DefaultMinStars
	}
	if options.StalenessDays == 0 {
		options.StalenessDays = DefaultStalenessDays
	}

	if err := options.validate(); err != nil {
		return nil, err
	}
	return &options, nil
}

func (o Options) validate() error {
	if o.MinStars < 0 {
		return errors.New("min_stars must not be negative")
	}
	if o.StalenessDays < 0 {
		return errors.New("staleness_days must not be negative")
	}
	for _, kind := range o.Kinds {
		if _, err := ParseRemediationKind(kind); err != nil {
			return fmt.Errorf("kinds: %w", err)
		}
	}
	for kind := range o.Remediations {
		if _, err := ParseRemediationKind(kind); err != nil {
			return fmt.Errorf("remediations: %w", err)
		}
	}
	return nil
}

// EnabledKinds returns the configured kinds, or every kind when none is configured.
func (o Options) EnabledKinds() []RemediationKind {
	if len(o.Kinds) == 0 {
		return AllRemediationKinds()
	}
	kinds := make([]RemediationKind, 0, len(o.Kinds))
	for _, value := range o.Kinds {
		if kind, err := ParseRemediationKind(value); err == nil {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// StalenessWindow returns the maximum lockfile age.
func (o Options) StalenessWindow() time.Duration {
	return time.Duration(o.StalenessDays) * 24 * time.Hour
}

// Details returns the naming for a kind with the configured overrides applied.
func (o Options) Details(kind RemediationKind, appName string) RemediationDetails {
	details := DefaultRemediationDetails(kind, appName)
	override, ok := o.Remediations[string(kind)]
	if !ok {
		return details
	}
	if override.BranchName != "" {
		details.BranchName = override.BranchName
	}
	if override.CommitMessage != "" {
		details.CommitMessage = override.CommitMessage
	}
	if override.PullRequestTitle != "" {
		details.PullRequestTitle = override.PullRequestTitle
	}
	return details
}

// FindConfigFile searches for an options file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{".forkfix.yaml", ".forkfix.yml", "forkfix.yaml", "forkfix.yml"}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}
