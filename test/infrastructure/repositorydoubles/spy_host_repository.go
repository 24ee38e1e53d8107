//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// FileKey is the key of the per-repository maps: "owner/name:path".
func FileKey(repo entities.Repository, path string) string {
	return repo.FullName() + ":" + path
}

// SpyHostRepository implements repositories.HostRepository in memory.
// Lookups missing from the maps return entities.ErrNotFound. Safe for concurrent use.
type SpyHostRepository struct {
	mu sync.Mutex

	// --- reads ---
	Login                 string
	Repositories          map[string]*entities.Repository // "owner/name"
	AccountRepositories   []entities.Repository
	ListAccountErr        error
	EventKeys             []entities.RepositoryKey
	EventsErr             error
	Contents              map[string]*entities.ManifestFile // FileKey
	RawContents           map[string][]byte                 // FileKey
	RawContentErr         error
	Directories           map[string][]string // FileKey
	LastModified          map[string]time.Time
	ContributionTemplates map[string]bool // "owner/name"
	ContributionErr       error
	ContentCalls          []string

	// --- git data ---
	BranchTip    *entities.BranchTip
	BranchTipErr error
	Blobs        []string
	Trees        [][]entities.TreeEntry
	Commits      []string
	Refs         []string
	CreateRefErr error

	// --- forks ---
	ForkOwner     string
	CreateForkErr error
	Forked        []entities.Repository
	DeleteErr     error
	Deleted       []entities.Repository

	// --- pull requests ---
	OpenPullRequests map[string]*entities.PullRequest // head
	PullRequests     map[int]*entities.PullRequest
	NextNumber       int
	CreatePRErr      error
	PRInputs         []entities.PullRequestInput
	CommentErr       error
	Comments         []string
}

var _ repositories.HostRepository = (*SpyHostRepository)(nil)

// NewSpyHostRepository returns an empty spy acting as login.
func NewSpyHostRepository(login string) *SpyHostRepository {
	return &SpyHostRepository{
		Login:                 login,
		Repositories:          map[string]*entities.Repository{},
		Contents:              map[string]*entities.ManifestFile{},
		RawContents:           map[string][]byte{},
		Directories:           map[string][]string{},
		LastModified:          map[string]time.Time{},
		ContributionTemplates: map[string]bool{},
		OpenPullRequests:      map[string]*entities.PullRequest{},
		PullRequests:          map[int]*entities.PullRequest{},
		BranchTip:             &entities.BranchTip{CommitSHA: "tip-commit", TreeSHA: "tip-tree"},
		NextNumber:            1,
	}
}

// AddRepository registers a repository for GetRepository.
func (s *SpyHostRepository) AddRepository(repo entities.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Repositories[repo.FullName()] = &repo
}

// AddFile registers a file at every ref.
func (s *SpyHostRepository) AddFile(repo entities.Repository, path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Contents[FileKey(repo, path)] = &entities.ManifestFile{
		Path:    path,
		Content: []byte(content),
		SHA:     "sha-" + path,
		Size:    len(content),
	}
}

func (s *SpyHostRepository) GetAuthenticatedUser(_ context.Context) (string, error) {
	if s.Login == "" {
		return "", fmt.Errorf("anonymous: %w", entities.ErrNotFound)
	}
	return s.Login, nil
}

func (s *SpyHostRepository) GetRepository(_ context.Context, owner, name string) (*entities.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.Repositories[owner+"/"+name]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s: %w", owner, name, entities.ErrNotFound)
	}
	clone := *repo
	return &clone, nil
}

func (s *SpyHostRepository) ListAccountRepositories(_ context.Context) ([]entities.Repository, error) {
	return s.AccountRepositories, s.ListAccountErr
}

func (s *SpyHostRepository) ListEventRepositories(
	_ context.Context, _ string, _ entities.OwnerType,
) ([]entities.RepositoryKey, error) {
	return s.EventKeys, s.EventsErr
}

func (s *SpyHostRepository) GetContent(
	_ context.Context, repo entities.Repository, path, _ string,
) (*entities.ManifestFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ContentCalls = append(s.ContentCalls, FileKey(repo, path))
	file, ok := s.Contents[FileKey(repo, path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrNotFound)
	}
	clone := *file
	return &clone, nil
}

func (s *SpyHostRepository) GetRawContent(
	_ context.Context, repo entities.Repository, path, _ string,
) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RawContentErr != nil {
		return nil, s.RawContentErr
	}
	raw, ok := s.RawContents[FileKey(repo, path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrNotFound)
	}
	return raw, nil
}

func (s *SpyHostRepository) ListDirectory(
	_ context.Context, repo entities.Repository, path, _ string,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.Directories[FileKey(repo, path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrNotFound)
	}
	return entries, nil
}

func (s *SpyHostRepository) GetLastModified(
	_ context.Context, repo entities.Repository, path string,
) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified, ok := s.LastModified[FileKey(repo, path)]
	if !ok {
		return time.Time{}, fmt.Errorf("%s history: %w", path, entities.ErrNotFound)
	}
	return modified, nil
}

func (s *SpyHostRepository) HasContributionTemplate(_ context.Context, repo entities.Repository) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ContributionTemplates[repo.FullName()], s.ContributionErr
}

func (s *SpyHostRepository) GetBranchTip(
	_ context.Context, _ entities.Repository, _ string,
) (*entities.BranchTip, error) {
	return s.BranchTip, s.BranchTipErr
}

func (s *SpyHostRepository) CreateFork(_ context.Context, repo entities.Repository) (*entities.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateForkErr != nil {
		return nil, s.CreateForkErr
	}
	source := repo
	fork := entities.Repository{Owner: s.ForkOwner, Name: repo.Name, IsFork: true, Source: &source}
	s.Forked = append(s.Forked, fork)
	return &fork, nil
}

func (s *SpyHostRepository) CreateBlob(_ context.Context, _ entities.Repository, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blobs = append(s.Blobs, content)
	return fmt.Sprintf("blob-%d", len(s.Blobs)), nil
}

func (s *SpyHostRepository) CreateTree(
	_ context.Context, _ entities.Repository, _ string, entries []entities.TreeEntry,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Trees = append(s.Trees, entries)
	return fmt.Sprintf("tree-%d", len(s.Trees)), nil
}

func (s *SpyHostRepository) CreateCommit(
	_ context.Context, _ entities.Repository, message, _ string, _ []string,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Commits = append(s.Commits, message)
	return fmt.Sprintf("commit-%d", len(s.Commits)), nil
}

func (s *SpyHostRepository) CreateRef(_ context.Context, _ entities.Repository, ref, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateRefErr != nil {
		return s.CreateRefErr
	}
	s.Refs = append(s.Refs, ref)
	return nil
}

func (s *SpyHostRepository) FindOpenPullRequest(
	_ context.Context, _ entities.Repository, head string,
) (*entities.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.OpenPullRequests[head]
	if !ok {
		return nil, fmt.Errorf("pull request from %s: %w", head, entities.ErrNotFound)
	}
	return pr, nil
}

func (s *SpyHostRepository) CreatePullRequest(
	_ context.Context, repo entities.Repository, input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PRInputs = append(s.PRInputs, input)
	if s.CreatePRErr != nil {
		return nil, s.CreatePRErr
	}
	pr := &entities.PullRequest{
		Number: s.NextNumber,
		URL:    fmt.Sprintf("https://github.com/%s/pull/%d", repo.FullName(), s.NextNumber),
		State:  "open",
	}
	s.NextNumber++
	s.PullRequests[pr.Number] = pr
	s.OpenPullRequests[input.Head] = pr
	return pr, nil
}

func (s *SpyHostRepository) GetPullRequest(
	_ context.Context, _ entities.Repository, number int,
) (*entities.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.PullRequests[number]
	if !ok {
		return nil, fmt.Errorf("pull request #%d: %w", number, entities.ErrNotFound)
	}
	return pr, nil
}

func (s *SpyHostRepository) CreateComment(_ context.Context, _ entities.Repository, _ int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Comments = append(s.Comments, body)
	return s.CommentErr
}

func (s *SpyHostRepository) DeleteRepository(_ context.Context, repo entities.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, repo)
	return s.DeleteErr
}
