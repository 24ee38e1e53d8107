package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

const (
	perPage        = 100
	blobMode       = "100644"
	blobType       = "blob"
	blobEncoding   = "base64"
	refHeadsPrefix = "refs/heads/"
)

// HostRepository implements repositories.HostRepository for GitHub.
type HostRepository struct {
	client *gh.Client
}

// NewHostRepository wraps a configured go-github client.
func NewHostRepository(client *gh.Client) *HostRepository {
	return &HostRepository{client: client}
}

var _ repositories.HostRepository = (*HostRepository)(nil)

func (it *HostRepository) GetAuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := it.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", translate(err))
	}
	return user.GetLogin(), nil
}

func (it *HostRepository) GetRepository(ctx context.Context, owner, name string) (*entities.Repository, error) {
	repo, _, err := it.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, translate(err))
	}
	return toRepository(repo), nil
}

func (it *HostRepository) ListAccountRepositories(ctx context.Context) ([]entities.Repository, error) {
	var all []entities.Repository
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		repos, resp, err := it.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list account repositories: %w", translate(err))
		}
		for _, repo := range repos {
			all = append(all, *toRepository(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (it *HostRepository) ListEventRepositories(
	ctx context.Context,
	owner string,
	ownerType entities.OwnerType,
) ([]entities.RepositoryKey, error) {
	var keys []entities.RepositoryKey
	seen := map[entities.RepositoryKey]bool{}
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		var (
			events []*gh.Event
			resp   *gh.Response
			err    error
		)
		if ownerType == entities.OwnerTypeOrganization {
			events, resp, err = it.client.Activity.ListEventsForOrganization(ctx, owner, opts)
		} else {
			events, resp, err = it.client.Activity.ListEventsPerformedByUser(ctx, owner, true, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list events of %q: %w", owner, translate(err))
		}

		for _, event := range events {
			// event payloads carry the full "owner/name" in the name field
			key, parseErr := entities.ParseRepositoryKey(event.GetRepo().GetName())
			if parseErr != nil || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return keys, nil
}

func (it *HostRepository) GetContent(
	ctx context.Context,
	repo entities.Repository,
	filePath, ref string,
) (*entities.ManifestFile, error) {
	fileContent, _, _, err := it.client.Repositories.GetContents(
		ctx, repo.Owner, repo.Name, filePath,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get %q of %s: %w", filePath, repo.FullName(), translate(err))
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%w: %q is a directory", entities.ErrNotFound, filePath)
	}

	file := &entities.ManifestFile{
		Path:     filePath,
		Encoding: fileContent.GetEncoding(),
		SHA:      fileContent.GetSHA(),
		Size:     fileContent.GetSize(),
	}
	if file.Encoding == entities.EncodingNone {
		return file, nil
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", filePath, err)
	}
	file.Content = []byte(content)
	return file, nil
}

func (it *HostRepository) GetRawContent(
	ctx context.Context,
	repo entities.Repository,
	filePath, ref string,
) ([]byte, error) {
	reader, _, err := it.client.Repositories.DownloadContents(
		ctx, repo.Owner, repo.Name, filePath,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download %q of %s: %w", filePath, repo.FullName(), translate(err))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	return data, nil
}

func (it *HostRepository) ListDirectory(
	ctx context.Context,
	repo entities.Repository,
	dirPath, ref string,
) ([]string, error) {
	_, entries, _, err := it.client.Repositories.GetContents(
		ctx, repo.Owner, repo.Name, dirPath,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q of %s: %w", dirPath, repo.FullName(), translate(err))
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		entryPath := entry.GetPath()
		if entryPath == "" {
			entryPath = path.Join(dirPath, entry.GetName())
		}
		paths = append(paths, entryPath)
	}
	return paths, nil
}

func (it *HostRepository) GetLastModified(
	ctx context.Context,
	repo entities.Repository,
	filePath string,
) (time.Time, error) {
	commits, _, err := it.client.Repositories.ListCommits(
		ctx, repo.Owner, repo.Name,
		&gh.CommitsListOptions{Path: filePath, ListOptions: gh.ListOptions{PerPage: 1}},
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to list commits of %q: %w", filePath, translate(err))
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("%w: no commit touches %q", entities.ErrNotFound, filePath)
	}
	return commits[0].GetCommit().GetCommitter().GetDate().Time, nil
}

func (it *HostRepository) HasContributionTemplate(ctx context.Context, repo entities.Repository) (bool, error) {
	metrics, _, err := it.client.Repositories.GetCommunityHealthMetrics(ctx, repo.Owner, repo.Name)
	if err != nil {
		return false, fmt.Errorf("failed to get community profile of %s: %w", repo.FullName(), translate(err))
	}
	files := metrics.GetFiles()
	return files.GetPullRequestTemplate() != nil || files.GetContributing() != nil, nil
}

func (it *HostRepository) GetBranchTip(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (*entities.BranchTip, error) {
	ref, _, err := it.client.Git.GetRef(
		ctx, repo.Owner, repo.Name, refHeadsPrefix+strings.TrimPrefix(branch, refHeadsPrefix),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch ref %q: %w", branch, translate(err))
	}
	commitSHA := ref.GetObject().GetSHA()

	commit, _, err := it.client.Git.GetCommit(ctx, repo.Owner, repo.Name, commitSHA)
	if err != nil {
		return nil, fmt.Errorf("failed to get base commit: %w", translate(err))
	}
	return &entities.BranchTip{CommitSHA: commitSHA, TreeSHA: commit.GetTree().GetSHA()}, nil
}

func (it *HostRepository) CreateFork(ctx context.Context, repo entities.Repository) (*entities.Repository, error) {
	fork, _, err := it.client.Repositories.CreateFork(
		ctx, repo.Owner, repo.Name, &gh.RepositoryCreateForkOptions{},
	)
	if err != nil {
		var accepted *gh.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, fmt.Errorf("failed to fork %s: %w", repo.FullName(), translate(err))
		}
		// the fork is scheduled; the body already describes it
		fork = &gh.Repository{}
		if len(accepted.Raw) > 0 {
			if jsonErr := json.Unmarshal(accepted.Raw, fork); jsonErr != nil {
				logger.Debugf("Ignoring undecodable fork body for %s: %v", repo.FullName(), jsonErr)
			}
		}
	}
	return toRepository(fork), nil
}

func (it *HostRepository) CreateBlob(ctx context.Context, repo entities.Repository, content string) (string, error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	encoding := blobEncoding
	blob, _, err := it.client.Git.CreateBlob(ctx, repo.Owner, repo.Name, &gh.Blob{
		Content:  &encoded,
		Encoding: &encoding,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", translate(err))
	}
	return blob.GetSHA(), nil
}

func (it *HostRepository) CreateTree(
	ctx context.Context,
	repo entities.Repository,
	baseTreeSHA string,
	entries []entities.TreeEntry,
) (string, error) {
	treeEntries := make([]*gh.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		entryPath := strings.TrimPrefix(entry.Path, "/")
		sha := entry.BlobSHA
		mode := blobMode
		entryType := blobType
		treeEntries = append(treeEntries, &gh.TreeEntry{
			Path: &entryPath,
			Mode: &mode,
			Type: &entryType,
			SHA:  &sha,
		})
	}

	tree, _, err := it.client.Git.CreateTree(ctx, repo.Owner, repo.Name, baseTreeSHA, treeEntries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", translate(err))
	}
	return tree.GetSHA(), nil
}

func (it *HostRepository) CreateCommit(
	ctx context.Context,
	repo entities.Repository,
	message, treeSHA string,
	parents []string,
) (string, error) {
	parentCommits := make([]*gh.Commit, 0, len(parents))
	for _, parent := range parents {
		parentCommits = append(parentCommits, &gh.Commit{SHA: gh.String(parent)})
	}

	commit, _, err := it.client.Git.CreateCommit(
		ctx, repo.Owner, repo.Name,
		&gh.Commit{
			Message: &message,
			Tree:    &gh.Tree{SHA: &treeSHA},
			Parents: parentCommits,
		},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", translate(err))
	}
	return commit.GetSHA(), nil
}

func (it *HostRepository) CreateRef(ctx context.Context, repo entities.Repository, ref, sha string) error {
	_, _, err := it.client.Git.CreateRef(ctx, repo.Owner, repo.Name, &gh.Reference{
		Ref:    &ref,
		Object: &gh.GitObject{SHA: &sha},
	})
	if err == nil {
		return nil
	}
	if statusOf(err) == http.StatusUnprocessableEntity {
		return fmt.Errorf("%w: ref %q already exists on %s", entities.ErrConflict, ref, repo.FullName())
	}
	return fmt.Errorf("failed to create ref %q: %w", ref, translate(err))
}

func (it *HostRepository) FindOpenPullRequest(
	ctx context.Context,
	repo entities.Repository,
	head string,
) (*entities.PullRequest, error) {
	prs, _, err := it.client.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
		Head:  head,
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", translate(err))
	}
	if len(prs) == 0 {
		return nil, fmt.Errorf("%w: no open pull request from %q", entities.ErrNotFound, head)
	}
	return toPullRequest(prs[0]), nil
}

func (it *HostRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	pr, _, err := it.client.PullRequests.Create(ctx, repo.Owner, repo.Name, &gh.NewPullRequest{
		Title:               &input.Title,
		Head:                &input.Head,
		Base:                &input.Base,
		Body:                &input.Body,
		MaintainerCanModify: &input.MaintainerCanModify,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", translate(err))
	}
	return toPullRequest(pr), nil
}

func (it *HostRepository) GetPullRequest(
	ctx context.Context,
	repo entities.Repository,
	number int,
) (*entities.PullRequest, error) {
	pr, _, err := it.client.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, translate(err))
	}
	return toPullRequest(pr), nil
}

func (it *HostRepository) CreateComment(ctx context.Context, repo entities.Repository, number int, body string) error {
	_, _, err := it.client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &gh.IssueComment{Body: &body})
	if err != nil {
		return fmt.Errorf("failed to comment on #%d: %w", number, translate(err))
	}
	return nil
}

func (it *HostRepository) DeleteRepository(ctx context.Context, repo entities.Repository) error {
	if _, err := it.client.Repositories.Delete(ctx, repo.Owner, repo.Name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", repo.FullName(), translate(err))
	}
	return nil
}

func toRepository(repo *gh.Repository) *entities.Repository {
	result := &entities.Repository{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		Archived:      repo.GetArchived(),
		StarCount:     repo.GetStargazersCount(),
		OwnerType:     toOwnerType(repo.GetOwner().GetType()),
		DefaultBranch: repo.GetDefaultBranch(),
		IsFork:        repo.GetFork(),
	}
	if source := repo.GetSource(); source != nil {
		result.Source = toRepository(source)
	} else if parent := repo.GetParent(); parent != nil {
		result.Source = toRepository(parent)
	}
	return result
}

func toOwnerType(value string) entities.OwnerType {
	ownerType, err := entities.ParseOwnerType(value)
	if err != nil {
		return ""
	}
	return ownerType
}

func toPullRequest(pr *gh.PullRequest) *entities.PullRequest {
	return &entities.PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
		State:  pr.GetState(),
		Merged: pr.GetMerged() || pr.MergedAt != nil,
	}
}

func statusOf(err error) int {
	var errResponse *gh.ErrorResponse
	if errors.As(err, &errResponse) && errResponse.Response != nil {
		return errResponse.Response.StatusCode
	}
	return 0
}

// translate maps a 404 to entities.ErrNotFound and leaves other errors untouched.
func translate(err error) error {
	if statusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %w", entities.ErrNotFound, err)
	}
	return err
}
