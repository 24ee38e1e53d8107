package repositories

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/fixengines"
	ghRepo "github.com/rios0rios0/forkfix/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/ledger"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/pindependencies"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sortmanifest"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sources"
	"github.com/rios0rios0/forkfix/internal/infrastructure/telemetry"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register the two host identities
	if err := container.Provide(newHostClients); err != nil {
		return err
	}

	// Register the ledger and bind it to its port
	if err := container.Provide(func(settings *entities.Settings) (*ledger.SQLiteLedgerRepository, error) {
		return ledger.NewSQLiteLedgerRepository(context.Background(), settings.Environment.LedgerURL)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ledger.SQLiteLedgerRepository) repositories.LedgerRepository {
		return impl
	}); err != nil {
		return err
	}

	// Register detector registry with all remediation detectors
	if err := container.Provide(func() *DetectorRegistry {
		reg := NewDetectorRegistry()
		reg.Register(pindependencies.NewDetectorRepository())
		reg.Register(fixengines.NewDetectorRepository())
		reg.Register(sortmanifest.NewDetectorRepository())
		return reg
	}); err != nil {
		return err
	}

	// Register source registry with all candidate origins
	if err := container.Provide(func(
		clients repositories.HostClients,
		ledgerRepository repositories.LedgerRepository,
	) *SourceRegistry {
		reg := NewSourceRegistry()
		reg.Register(sources.NewAccountSourceRepository(clients))
		reg.Register(sources.NewEventsSourceRepository(clients))
		reg.Register(sources.NewLedgerSourceRepository(clients, ledgerRepository))
		return reg
	}); err != nil {
		return err
	}

	// Register the process metrics on the default registry served by /metrics
	if err := container.Provide(func() *telemetry.Metrics {
		return telemetry.NewMetrics(prometheus.DefaultRegisterer)
	}); err != nil {
		return err
	}

	return nil
}

// newHostClients builds one retrying client per token.
func newHostClients(settings *entities.Settings) (repositories.HostClients, error) {
	env := settings.Environment
	primary, err := ghRepo.NewClient(ghRepo.ClientOptions{
		Token: env.GitHubToken, RetryMax: env.RetryMax, RetryWait: env.RetryWait, BaseURL: env.APIURL,
	})
	if err != nil {
		return repositories.HostClients{}, err
	}
	bot, err := ghRepo.NewClient(ghRepo.ClientOptions{
		Token: env.BotToken, RetryMax: env.RetryMax, RetryWait: env.RetryWait, BaseURL: env.APIURL,
	})
	if err != nil {
		return repositories.HostClients{}, err
	}
	return repositories.HostClients{
		Primary: ghRepo.NewHostRepository(primary),
		Bot:     ghRepo.NewHostRepository(bot),
	}, nil
}
