package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// HostRepository abstracts the hosting platform's REST API.
// Lookups return entities.ErrNotFound for missing objects; callers decide whether that is fatal.
type HostRepository interface {
	// GetAuthenticatedUser returns the login of the account owning the token.
	GetAuthenticatedUser(ctx context.Context) (string, error)

	// GetRepository returns the full repository, including its source when it is a fork.
	GetRepository(ctx context.Context, owner, name string) (*entities.Repository, error)

	// ListAccountRepositories lists every repository of the authenticated account.
	ListAccountRepositories(ctx context.Context) ([]entities.Repository, error)

	// ListEventRepositories returns the repositories referenced by the public
	// activity events of an owner, deduplicated, in first-seen order.
	ListEventRepositories(
		ctx context.Context, owner string, ownerType entities.OwnerType,
	) ([]entities.RepositoryKey, error)

	// GetContent returns a file at the given ref. Large files may come back
	// with Encoding "none" and empty content.
	GetContent(ctx context.Context, repo entities.Repository, path, ref string) (*entities.ManifestFile, error)

	// GetRawContent returns the raw bytes of a file at the given ref.
	GetRawContent(ctx context.Context, repo entities.Repository, path, ref string) ([]byte, error)

	// ListDirectory returns the file paths directly under a directory.
	ListDirectory(ctx context.Context, repo entities.Repository, path, ref string) ([]string, error)

	// GetLastModified returns the date of the most recent commit touching path.
	GetLastModified(ctx context.Context, repo entities.Repository, path string) (time.Time, error)

	// HasContributionTemplate reports a pull request template or contributing guide.
	HasContributionTemplate(ctx context.Context, repo entities.Repository) (bool, error)

	// GetBranchTip returns the head commit and tree of a branch.
	GetBranchTip(ctx context.Context, repo entities.Repository, branch string) (*entities.BranchTip, error)

	// CreateFork forks repo into the authenticated account.
	CreateFork(ctx context.Context, repo entities.Repository) (*entities.Repository, error)

	// CreateBlob stores content and returns the blob sha.
	CreateBlob(ctx context.Context, repo entities.Repository, content string) (string, error)

	// CreateTree layers entries on top of baseTreeSHA and returns the new tree sha.
	CreateTree(
		ctx context.Context, repo entities.Repository, baseTreeSHA string, entries []entities.TreeEntry,
	) (string, error)

	// CreateCommit creates a commit and returns its sha.
	CreateCommit(
		ctx context.Context, repo entities.Repository, message, treeSHA string, parents []string,
	) (string, error)

	// CreateRef creates a ref. An existing ref yields entities.ErrConflict.
	CreateRef(ctx context.Context, repo entities.Repository, ref, sha string) error

	// FindOpenPullRequest returns the open pull request whose head is "owner:branch".
	FindOpenPullRequest(ctx context.Context, repo entities.Repository, head string) (*entities.PullRequest, error)

	// CreatePullRequest opens a pull request against repo.
	CreatePullRequest(
		ctx context.Context, repo entities.Repository, input entities.PullRequestInput,
	) (*entities.PullRequest, error)

	// GetPullRequest returns the live state of a pull request.
	GetPullRequest(ctx context.Context, repo entities.Repository, number int) (*entities.PullRequest, error)

	// CreateComment comments on an issue or pull request.
	CreateComment(ctx context.Context, repo entities.Repository, number int, body string) error

	// DeleteRepository deletes repo.
	DeleteRepository(ctx context.Context, repo entities.Repository) error
}

// HostClients holds the two identities the system acts with: the primary
// account owns the forks, the bot opens the pull requests.
type HostClients struct {
	Primary HostRepository
	Bot     HostRepository
}
