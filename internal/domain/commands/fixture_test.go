//go:build unit

package commands_test

import (
	"time"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/forkfix/internal/infrastructure/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sources"
	doubles "github.com/rios0rios0/forkfix/test/infrastructure/repositorydoubles"
)

const (
	botLogin     = "forkfix-bot"
	primaryLogin = "forkfix-account"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test clock

// fixture wires the commands over in-memory doubles.
type fixture struct {
	primary   *doubles.SpyHostRepository
	bot       *doubles.SpyHostRepository
	ledger    *doubles.SpyLedgerRepository
	detectors *infraRepos.DetectorRegistry
	sources   *infraRepos.SourceRegistry
	settings  *entities.Settings
}

func newFixture() *fixture {
	f := &fixture{
		primary:   doubles.NewSpyHostRepository(primaryLogin),
		bot:       doubles.NewSpyHostRepository(botLogin),
		ledger:    &doubles.SpyLedgerRepository{},
		detectors: infraRepos.NewDetectorRegistry(),
		sources:   infraRepos.NewSourceRegistry(),
		settings: &entities.Settings{
			Environment: entities.Environment{AppName: entities.DefaultAppName, Concurrency: 4},
			Options:     entities.DefaultOptions(),
		},
	}
	f.primary.ForkOwner = primaryLogin
	// the bot shares the primary's view of open pull requests
	f.bot.OpenPullRequests = f.primary.OpenPullRequests
	f.bot.PullRequests = f.primary.PullRequests
	f.sources.Register(sources.NewLedgerSourceRepository(f.clients(), f.ledger))
	return f
}

func (f *fixture) clients() repositories.HostClients {
	return repositories.HostClients{Primary: f.primary, Bot: f.bot}
}

func (f *fixture) fetcher() *commands.AnalysisFetcher {
	return commands.NewAnalysisFetcher(f.clients(), f.ledger)
}

func (f *fixture) engine() *commands.RemediationEngine {
	return commands.NewRemediationEngine(f.detectors)
}

func (f *fixture) propose() *commands.ProposeCommand {
	return commands.NewProposeCommand(f.clients(), f.ledger, f.sources, f.fetcher(), f.engine(), f.settings, nil)
}

func (f *fixture) discover() *commands.DiscoverCommand {
	command := commands.NewDiscoverCommand(f.sources, f.fetcher(), f.engine(), f.settings, nil)
	command.SetClock(func() time.Time { return fixedNow })
	return command
}

// addEligible seeds upstream with files passing every Stage B rule.
func (f *fixture) addEligible(upstream entities.Repository, manifest string) {
	f.primary.AddRepository(upstream)
	f.primary.AddFile(upstream, entities.ManifestPath, manifest)
	f.primary.AddFile(upstream, entities.LockfilePath, `{"name":"widget","lockfileVersion":2}`)
	f.primary.Directories[doubles.FileKey(upstream, entities.WorkflowsDir)] = []string{".github/workflows/ci.yml"}
	f.primary.AddFile(upstream, ".github/workflows/ci.yml", "on:\n  pull_request:\n  push:\n")
	f.primary.LastModified[doubles.FileKey(upstream, entities.LockfilePath)] = fixedNow.AddDate(0, -1, 0)
}

// stubDetector registers a detector proposing a change to package.json.
func (f *fixture) stubDetector(kind entities.RemediationKind) *doubles.StubDetectorRepository {
	detector := &doubles.StubDetectorRepository{
		DetectorKind: kind,
		Changes: []entities.Change{
			{Path: entities.ManifestPath, Field: "dependencies.lodash", From: "^4.17.0", To: "4.17.21"},
		},
		Files: []entities.RenderedFile{{Path: entities.ManifestPath, Content: "{\n  \"changed\": \"" + string(kind) + "\"\n}\n"}},
	}
	f.detectors.Register(detector)
	return detector
}
