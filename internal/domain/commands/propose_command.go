package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/forkfix/internal/infrastructure/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/sources"
	"github.com/rios0rios0/forkfix/internal/infrastructure/telemetry"
)

const refHeadsPrefix = "refs/heads/"

// Propose is the interface for the fork-and-commit workflow.
type Propose interface {
	Execute(ctx context.Context, fork entities.RepositoryKey, opts ProposeOptions) (*ProposeReport, error)
	ResolveForks(ctx context.Context, sourceName string) ([]entities.RepositoryKey, error)
}

// ProposeOptions holds runtime options for a single workflow run.
type ProposeOptions struct {
	DryRun bool
}

// KindOutcome is what happened to one remediation kind.
type KindOutcome struct {
	Kind        entities.RemediationKind
	Outcome     string // one of the telemetry.Outcome* values
	Reason      string
	PullRequest *entities.PullRequest
	Err         error
}

// ProposeReport summarises a workflow run for one fork.
type ProposeReport struct {
	Fork     entities.Repository
	Upstream entities.Repository
	Outcomes []KindOutcome
}

// Opened returns the pull requests opened during the run.
func (r *ProposeReport) Opened() []entities.PullRequest {
	var opened []entities.PullRequest
	for _, outcome := range r.Outcomes {
		if outcome.PullRequest != nil {
			opened = append(opened, *outcome.PullRequest)
		}
	}
	return opened
}

// ProposeCommand pushes one branch per approved kind to a fork and opens a
// pull request against its upstream, recording it in the ledger last.
type ProposeCommand struct {
	clients  repositories.HostClients
	ledger   repositories.LedgerRepository
	registry *infraRepos.SourceRegistry
	fetcher  *AnalysisFetcher
	engine   *RemediationEngine
	settings *entities.Settings
	metrics  *telemetry.Metrics
}

// NewProposeCommand creates a new ProposeCommand.
func NewProposeCommand(
	clients repositories.HostClients,
	ledger repositories.LedgerRepository,
	registry *infraRepos.SourceRegistry,
	fetcher *AnalysisFetcher,
	engine *RemediationEngine,
	settings *entities.Settings,
	metrics *telemetry.Metrics,
) *ProposeCommand {
	return &ProposeCommand{
		clients:  clients,
		ledger:   ledger,
		registry: registry,
		fetcher:  fetcher,
		engine:   engine,
		settings: settings,
		metrics:  metrics,
	}
}

// Execute runs the workflow for a fork. Only a missing upstream or an unreadable
// fork or ledger aborts the run; every kind otherwise succeeds or fails alone.
func (it *ProposeCommand) Execute(
	ctx context.Context,
	forkKey entities.RepositoryKey,
	opts ProposeOptions,
) (*ProposeReport, error) {
	fork, err := it.clients.Primary.GetRepository(ctx, forkKey.Owner, forkKey.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read fork %s: %w", forkKey, err)
	}
	if !fork.IsFork || fork.Source == nil {
		return nil, fmt.Errorf("%w: %s is not a fork with a known source", entities.ErrUpstreamMissing, forkKey)
	}
	upstream := *fork.Source
	report := &ProposeReport{Fork: *fork, Upstream: upstream}
	entry := logger.WithField("repository", upstream.FullName())

	snapshot, err := it.fetcher.Snapshot(ctx, upstream.Key())
	if err != nil {
		return nil, err
	}

	manifest := it.fetcher.FetchFile(ctx, *fork, entities.ManifestPath, fork.DefaultBranch)
	if manifest == nil {
		entry.Infof("[propose] No %s on the fork, nothing to propose", entities.ManifestPath)
		return report, nil
	}
	lockfile := it.fetcher.FetchFile(ctx, *fork, entities.LockfilePath, fork.DefaultBranch)
	editorConfig := it.fetcher.FetchFile(ctx, *fork, entities.EditorConfigPath, fork.DefaultBranch)
	baseSHAs := map[string]string{entities.ManifestPath: manifest.SHA}
	if lockfile != nil {
		baseSHAs[entities.LockfilePath] = lockfile.SHA
	}

	assessments := it.engine.Assess(entities.DetectionInput{
		Repository:   upstream,
		Manifest:     manifest.Text(),
		Lockfile:     lockfile.Text(),
		EditorConfig: editorConfig.Text(),
	}, snapshot, it.settings.Options.EnabledKinds())

	report.Outcomes = make([]KindOutcome, len(assessments))
	var wg sync.WaitGroup
	for i, assessment := range assessments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Outcomes[i] = it.proposeKind(ctx, *fork, snapshot, assessment, baseSHAs, opts)
		}()
	}
	wg.Wait()

	for _, outcome := range report.Outcomes {
		it.metrics.IncProposal(string(outcome.Kind), outcome.Outcome)
		kindEntry := entry.WithField("kind", outcome.Kind)
		switch {
		case outcome.Err != nil:
			kindEntry.Errorf("[propose] %s: %v", outcome.Outcome, outcome.Err)
		case outcome.PullRequest != nil:
			kindEntry.Infof("[propose] Opened %s", outcome.PullRequest.URL)
		default:
			kindEntry.Infof("[propose] %s (%s)", outcome.Outcome, outcome.Reason)
		}
	}
	return report, nil
}

func (it *ProposeCommand) proposeKind(
	ctx context.Context,
	fork entities.Repository,
	snapshot entities.LedgerSnapshot,
	assessment Assessment,
	baseSHAs map[string]string,
	opts ProposeOptions,
) KindOutcome {
	outcome := KindOutcome{Kind: assessment.Kind, Outcome: telemetry.OutcomeSkipped, Reason: assessment.Reason}
	if !assessment.Approved {
		return outcome
	}
	if snapshot.HasOpenProposal(assessment.Kind) {
		outcome.Reason = "open proposal in ledger"
		return outcome
	}

	proposal := it.buildProposal(fork, assessment, baseSHAs)
	head := fork.Owner + ":" + proposal.BranchName
	if _, err := it.clients.Bot.FindOpenPullRequest(ctx, proposal.Upstream, head); err == nil {
		outcome.Reason = "open pull request from " + head
		return outcome
	} else if !errors.Is(err, entities.ErrNotFound) {
		logger.WithField("repository", proposal.Upstream.FullName()).
			Debugf("Open pull request lookup failed, treating as absent: %v", err)
	}

	if opts.DryRun {
		outcome.Outcome = telemetry.OutcomeDryRun
		outcome.Reason = fmt.Sprintf("would push %d file(s) to %s", len(proposal.Files), head)
		return outcome
	}

	pr, err := it.publish(ctx, proposal)
	if err != nil {
		outcome.Outcome = telemetry.OutcomeFailed
		if errors.Is(err, entities.ErrConflict) {
			outcome.Outcome = telemetry.OutcomeConflict
		}
		outcome.Err = err
		return outcome
	}

	outcome.Outcome = telemetry.OutcomeOpened
	outcome.Reason = ReasonApproved
	outcome.PullRequest = pr
	return outcome
}

func (it *ProposeCommand) buildProposal(
	fork entities.Repository,
	assessment Assessment,
	baseSHAs map[string]string,
) entities.RemediationProposal {
	details := it.settings.Options.Details(assessment.Kind, it.settings.Environment.AppName)
	files := make([]entities.FileEdit, 0, len(assessment.Detection.Files))
	for _, file := range assessment.Detection.Files {
		files = append(files, entities.FileEdit{
			Path:       file.Path,
			NewContent: file.Content,
			BaseSHA:    baseSHAs[file.Path],
		})
	}
	return entities.RemediationProposal{
		Repository:       fork,
		Upstream:         *fork.Source,
		Kind:             assessment.Kind,
		Files:            files,
		Changes:          assessment.Detection.Changes,
		BranchName:       details.BranchName,
		CommitMessage:    details.CommitMessage,
		PullRequestTitle: details.PullRequestTitle,
	}
}

// publish runs the write steps strictly in order. The ledger is written last,
// so a crash before it leaves a branch that makes a retry stop at the ref step.
func (it *ProposeCommand) publish(
	ctx context.Context,
	proposal entities.RemediationProposal,
) (*entities.PullRequest, error) {
	fork := proposal.Repository
	upstream := proposal.Upstream

	tip, err := it.clients.Primary.GetBranchTip(ctx, fork, fork.DefaultBranch)
	if err != nil {
		return nil, err
	}

	entries := make([]entities.TreeEntry, 0, len(proposal.Files))
	for _, file := range proposal.Files {
		blobSHA, blobErr := it.clients.Primary.CreateBlob(ctx, fork, file.NewContent)
		if blobErr != nil {
			return nil, blobErr
		}
		entries = append(entries, entities.TreeEntry{Path: file.Path, BlobSHA: blobSHA})
	}

	treeSHA, err := it.clients.Primary.CreateTree(ctx, fork, tip.TreeSHA, entries)
	if err != nil {
		return nil, err
	}
	commitSHA, err := it.clients.Primary.CreateCommit(ctx, fork, proposal.CommitMessage, treeSHA, []string{tip.CommitSHA})
	if err != nil {
		return nil, err
	}
	if err = it.clients.Primary.CreateRef(ctx, fork, refHeadsPrefix+proposal.BranchName, commitSHA); err != nil {
		return nil, err
	}

	body, err := RenderPullRequestBody(proposal.Kind, PullRequestBodyData{
		AppName:  it.settings.Environment.AppName,
		Upstream: upstream,
		Fork:     fork,
		Branch:   proposal.BranchName,
		Changes:  proposal.Changes,
	})
	if err != nil {
		return nil, err
	}

	pr, err := it.clients.Bot.CreatePullRequest(ctx, upstream, entities.PullRequestInput{
		Head:                fork.Owner + ":" + proposal.BranchName,
		Base:                upstream.DefaultBranch,
		Title:               proposal.PullRequestTitle,
		Body:                body,
		MaintainerCanModify: true,
	})
	if err != nil {
		return nil, err
	}

	comment := renderChangeComment(proposal.Changes)
	if commentErr := it.clients.Bot.CreateComment(ctx, upstream, pr.Number, comment); commentErr != nil {
		logger.WithFields(logger.Fields{"repository": upstream.FullName(), "kind": proposal.Kind}).
			Warnf("Failed to comment the change list on #%d: %v", pr.Number, commentErr)
	}

	record, err := it.ledger.UpsertRepository(ctx, upstream.Owner, upstream.Name, true)
	if err != nil {
		return pr, fmt.Errorf("pull request %s opened but not recorded: %w", pr.URL, err)
	}
	if _, err = it.ledger.AppendProposal(ctx, entities.LedgerProposalRecord{
		RepositoryID:      record.ID,
		Kind:              proposal.Kind,
		PullRequestURL:    pr.URL,
		PullRequestNumber: pr.Number,
		State:             entities.StateOpened,
	}); err != nil {
		return pr, fmt.Errorf("pull request %s opened but not recorded: %w", pr.URL, err)
	}
	return pr, nil
}

// ResolveForks lists the forks to run the workflow on: the forks of the
// account source, or the primary account's forks of the ledger's upstreams.
func (it *ProposeCommand) ResolveForks(ctx context.Context, sourceName string) ([]entities.RepositoryKey, error) {
	source, err := it.registry.Get(sourceName)
	if err != nil {
		return nil, err
	}
	repos, err := source.List(ctx, repositories.SourceOptions{})
	if err != nil {
		return nil, err
	}

	var login string
	if sourceName != sources.AccountSourceName {
		if login, err = it.clients.Primary.GetAuthenticatedUser(ctx); err != nil {
			return nil, err
		}
	}

	keys := make([]entities.RepositoryKey, 0, len(repos))
	for _, repo := range repos {
		switch {
		case login != "":
			keys = append(keys, entities.RepositoryKey{Owner: login, Name: repo.Name})
		case repo.IsFork:
			keys = append(keys, repo.Key())
		}
	}
	return keys, nil
}
