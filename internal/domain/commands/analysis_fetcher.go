package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const (
	// the host omits the content of files from 1 MiB and refuses files from 100 MiB
	largeFileMinSize = 1 << 20
	largeFileMaxSize = 100 << 20

	pullRequestTrigger = "pull_request"
)

// AnalysisFetcher builds the AnalysisContext of a repository and reads its
// ledger snapshot. Every read-only lookup failure is treated as "absent".
type AnalysisFetcher struct {
	host   repositories.HostRepository
	ledger repositories.LedgerRepository
}

// NewAnalysisFetcher creates a fetcher reading with the primary identity.
func NewAnalysisFetcher(clients repositories.HostClients, ledger repositories.LedgerRepository) *AnalysisFetcher {
	return &AnalysisFetcher{host: clients.Primary, ledger: ledger}
}

// Snapshot reads the ledger rows of an upstream repository once.
func (it *AnalysisFetcher) Snapshot(ctx context.Context, upstream entities.RepositoryKey) (entities.LedgerSnapshot, error) {
	record, err := it.ledger.FindRepository(ctx, upstream.Owner, upstream.Name)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.LedgerSnapshot{}, nil
	}
	if err != nil {
		return entities.LedgerSnapshot{}, fmt.Errorf("failed to read ledger for %s: %w", upstream, err)
	}

	proposals, err := it.ledger.FindProposals(ctx, record.ID)
	if err != nil {
		return entities.LedgerSnapshot{}, fmt.Errorf("failed to read proposals for %s: %w", upstream, err)
	}
	return entities.LedgerSnapshot{Repository: record, Proposals: proposals}, nil
}

// Analyze fetches every Stage-B input of repo in parallel. The workflow scan and
// the lockfile history only run when both the manifest and the lockfile exist.
func (it *AnalysisFetcher) Analyze(
	ctx context.Context,
	repo entities.Repository,
) (*entities.AnalysisContext, entities.LedgerSnapshot, error) {
	analysis := &entities.AnalysisContext{Repository: repo}
	competing := make([]bool, len(entities.CompetingLockfilePaths()))
	var snapshot entities.LedgerSnapshot

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		analysis.Manifest = it.FetchFile(groupCtx, repo, entities.ManifestPath, repo.DefaultBranch)
		return nil
	})
	group.Go(func() error {
		analysis.Lockfile = it.FetchFile(groupCtx, repo, entities.LockfilePath, repo.DefaultBranch)
		return nil
	})
	group.Go(func() error {
		analysis.EditorConfig = it.FetchFile(groupCtx, repo, entities.EditorConfigPath, repo.DefaultBranch)
		return nil
	})
	for i, competingPath := range entities.CompetingLockfilePaths() {
		group.Go(func() error {
			competing[i] = it.exists(groupCtx, repo, competingPath)
			return nil
		})
	}
	group.Go(func() error {
		hasTemplate, err := it.host.HasContributionTemplate(groupCtx, repo)
		if err != nil {
			logLookup(repo, "community profile", err)
		}
		analysis.HasContributionTemplate = hasTemplate
		return nil
	})
	group.Go(func() error {
		var err error
		snapshot, err = it.Snapshot(groupCtx, repo.Key())
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, entities.LedgerSnapshot{}, err
	}

	for _, found := range competing {
		analysis.HasCompetingLockfile = analysis.HasCompetingLockfile || found
	}
	analysis.IsAlreadyForked = snapshot.IsForked()

	if !analysis.HasManifestPair() {
		return analysis, snapshot, nil
	}

	group, groupCtx = errgroup.WithContext(ctx)
	group.Go(func() error {
		analysis.HasCIOnPullRequests = it.hasCIOnPullRequests(groupCtx, repo)
		analysis.CIEvaluated = true
		return nil
	})
	group.Go(func() error {
		modified, err := it.host.GetLastModified(groupCtx, repo, entities.LockfilePath)
		if err != nil {
			logLookup(repo, entities.LockfilePath+" history", err)
			return nil
		}
		analysis.Lockfile.LastModifiedAt = modified
		return nil
	})
	_ = group.Wait()

	return analysis, snapshot, nil
}

// FetchFile returns the file at ref, or nil when it cannot be read. Large files
// whose content the host omitted are downloaded again in raw form; a failed
// download yields empty content.
func (it *AnalysisFetcher) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	filePath, ref string,
) *entities.ManifestFile {
	file, err := it.host.GetContent(ctx, repo, filePath, ref)
	if err != nil {
		logLookup(repo, filePath, err)
		return nil
	}

	if file.Encoding == entities.EncodingNone && file.Size >= largeFileMinSize && file.Size < largeFileMaxSize {
		raw, rawErr := it.host.GetRawContent(ctx, repo, filePath, ref)
		if rawErr != nil {
			logger.WithField("repository", repo.FullName()).Debugf("Raw download of %q failed: %v", filePath, rawErr)
			raw = nil
		}
		file.Content = raw
	}
	return file
}

func (it *AnalysisFetcher) exists(ctx context.Context, repo entities.Repository, filePath string) bool {
	_, err := it.host.GetContent(ctx, repo, filePath, repo.DefaultBranch)
	if err != nil {
		logLookup(repo, filePath, err)
		return false
	}
	return true
}

// hasCIOnPullRequests scans the workflow files in order and stops at the first
// one mentioning the pull request trigger.
func (it *AnalysisFetcher) hasCIOnPullRequests(ctx context.Context, repo entities.Repository) bool {
	workflows, err := it.host.ListDirectory(ctx, repo, entities.WorkflowsDir, repo.DefaultBranch)
	if err != nil {
		logLookup(repo, entities.WorkflowsDir, err)
		return false
	}

	for _, workflow := range workflows {
		if ext := path.Ext(workflow); ext != ".yml" && ext != ".yaml" {
			continue
		}
		file := it.FetchFile(ctx, repo, workflow, repo.DefaultBranch)
		if strings.Contains(file.Text(), pullRequestTrigger) {
			return true
		}
	}
	return false
}

func logLookup(repo entities.Repository, what string, err error) {
	entry := logger.WithField("repository", repo.FullName())
	if errors.Is(err, entities.ErrNotFound) {
		entry.Debugf("%s not found", what)
		return
	}
	entry.Debugf("Lookup of %s failed, treating as absent: %v", what, err)
}
