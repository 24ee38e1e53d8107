package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/forkfix/internal/infrastructure/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/telemetry"
)

// Discover is the interface for the discovery pipeline.
type Discover interface {
	Execute(ctx context.Context, opts DiscoverOptions) (*DiscoverReport, error)
}

// DiscoverOptions holds runtime options for a single discovery.
type DiscoverOptions struct {
	Source      string
	OwnerType   entities.OwnerType
	EventsOwner string
}

// DiscoverReport counts the candidates at each stage and lists the approved repositories.
type DiscoverReport struct {
	Listed     int
	StageA     int
	StageB     int
	Approved   []entities.RepositoryKey
	Rejections map[string]int
}

// DiscoverCommand runs RepositorySource -> EligibilityFilter -> RemediationEngine.
type DiscoverCommand struct {
	sources  *infraRepos.SourceRegistry
	fetcher  *AnalysisFetcher
	engine   *RemediationEngine
	settings *entities.Settings
	metrics  *telemetry.Metrics
	now      func() time.Time
}

// NewDiscoverCommand creates a new DiscoverCommand.
func NewDiscoverCommand(
	sources *infraRepos.SourceRegistry,
	fetcher *AnalysisFetcher,
	engine *RemediationEngine,
	settings *entities.Settings,
	metrics *telemetry.Metrics,
) *DiscoverCommand {
	return &DiscoverCommand{
		sources:  sources,
		fetcher:  fetcher,
		engine:   engine,
		settings: settings,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Execute lists the candidates, filters them in two stages and keeps the
// repositories for which at least one remediation is actionable.
func (it *DiscoverCommand) Execute(ctx context.Context, opts DiscoverOptions) (*DiscoverReport, error) {
	source, err := it.sources.Get(opts.Source)
	if err != nil {
		return nil, err
	}

	candidates, err := source.List(ctx, repositories.SourceOptions{
		EventsOwner: opts.EventsOwner,
		OwnerType:   opts.OwnerType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s candidates: %w", source.Name(), err)
	}

	report := &DiscoverReport{Listed: len(candidates), Rejections: map[string]int{}}
	it.metrics.AddCandidates(telemetry.StageListed, len(candidates))
	logger.Infof("[discover] %d candidate(s) from the %s source", len(candidates), source.Name())

	stageA := StageARules(it.settings.Options.MinStars, opts.OwnerType)
	var metadataPassed []entities.Repository
	for _, repo := range candidates {
		verdict := Evaluate(repo, stageA)
		if !verdict.Accepted {
			it.reject(report, repo, verdict.RejectedBy)
			continue
		}
		metadataPassed = append(metadataPassed, repo)
	}
	report.StageA = len(metadataPassed)
	it.metrics.AddCandidates(telemetry.StageA, report.StageA)

	var mu sync.Mutex
	stageB := StageBRules(it.now(), it.settings.Options.StalenessWindow())
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(it.settings.Environment.Concurrency, 1))
	for _, repo := range metadataPassed {
		group.Go(func() error {
			passed, approved, rejectedBy := it.analyze(groupCtx, repo, stageB)

			mu.Lock()
			defer mu.Unlock()
			if rejectedBy != "" {
				it.reject(report, repo, rejectedBy)
			}
			if passed {
				report.StageB++
			}
			if approved {
				report.Approved = append(report.Approved, repo.Key())
			}
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(report.Approved, func(i, j int) bool {
		return report.Approved[i].String() < report.Approved[j].String()
	})
	it.metrics.AddCandidates(telemetry.StageB, report.StageB)
	it.metrics.AddCandidates(telemetry.StageApproved, len(report.Approved))
	logger.Infof(
		"[discover] listed=%d stage_a=%d stage_b=%d approved=%d",
		report.Listed, report.StageA, report.StageB, len(report.Approved),
	)
	return report, nil
}

// analyze runs Stage B and the detectors for one repository.
func (it *DiscoverCommand) analyze(
	ctx context.Context,
	repo entities.Repository,
	rules []Rule[*entities.AnalysisContext],
) (bool, bool, string) {
	entry := logger.WithField("repository", repo.FullName())

	analysis, snapshot, err := it.fetcher.Analyze(ctx, repo)
	if err != nil {
		entry.Errorf("[discover] Analysis failed: %v", err)
		return false, false, RejectAnalysisFailed
	}

	verdict := Evaluate(analysis, rules)
	if !verdict.Accepted {
		return false, false, verdict.RejectedBy
	}

	assessments := it.engine.Assess(entities.DetectionInput{
		Repository:   repo,
		Manifest:     analysis.Manifest.Text(),
		Lockfile:     analysis.Lockfile.Text(),
		EditorConfig: analysis.EditorConfig.Text(),
	}, snapshot, it.settings.Options.EnabledKinds())
	if !AnyApproved(assessments) {
		return true, false, RejectNoRemediation
	}

	entry.Infof("[discover] Approved for forking")
	return true, true, ""
}

func (it *DiscoverCommand) reject(report *DiscoverReport, repo entities.Repository, rule string) {
	report.Rejections[rule]++
	it.metrics.IncRejection(rule)
	logger.WithField("repository", repo.FullName()).Debugf("[discover] Rejected by %s", rule)
}
