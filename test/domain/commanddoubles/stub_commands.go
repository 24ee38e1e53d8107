//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// StubDiscoverCommand is a stub implementation of commands.Discover.
type StubDiscoverCommand struct {
	ExecuteCallCount int
	Report           *commands.DiscoverReport
	ExecuteErr       error
	LastOpts         commands.DiscoverOptions
}

var _ commands.Discover = (*StubDiscoverCommand)(nil)

func (s *StubDiscoverCommand) Execute(
	_ context.Context,
	opts commands.DiscoverOptions,
) (*commands.DiscoverReport, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Report, s.ExecuteErr
}

// StubForkCommand is a stub implementation of commands.Fork.
type StubForkCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastUpstreams    []entities.RepositoryKey
	LastOpts         commands.ForkOptions
}

var _ commands.Fork = (*StubForkCommand)(nil)

func (s *StubForkCommand) Execute(
	_ context.Context,
	upstreams []entities.RepositoryKey,
	opts commands.ForkOptions,
) (*commands.ForkReport, error) {
	s.ExecuteCallCount++
	s.LastUpstreams = upstreams
	s.LastOpts = opts
	return &commands.ForkReport{Forked: upstreams}, s.ExecuteErr
}

// StubProposeCommand is a stub implementation of commands.Propose. It is safe
// for concurrent use since the webhook handler calls it from goroutines.
type StubProposeCommand struct {
	mu sync.Mutex

	Forks      []entities.RepositoryKey
	ExecuteErr error
	LastOpts   commands.ProposeOptions

	ResolvedForks []entities.RepositoryKey
	ResolveErr    error
	LastSource    string

	// Done receives the fork key after every Execute when not nil.
	Done chan entities.RepositoryKey
}

var _ commands.Propose = (*StubProposeCommand)(nil)

func (s *StubProposeCommand) Execute(
	_ context.Context,
	fork entities.RepositoryKey,
	opts commands.ProposeOptions,
) (*commands.ProposeReport, error) {
	s.mu.Lock()
	s.Forks = append(s.Forks, fork)
	s.LastOpts = opts
	s.mu.Unlock()

	if s.Done != nil {
		s.Done <- fork
	}
	return &commands.ProposeReport{}, s.ExecuteErr
}

func (s *StubProposeCommand) ResolveForks(_ context.Context, sourceName string) ([]entities.RepositoryKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastSource = sourceName
	return s.ResolvedForks, s.ResolveErr
}

// ExecutedForks returns a copy of the forks Execute was called with.
func (s *StubProposeCommand) ExecutedForks() []entities.RepositoryKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.RepositoryKey(nil), s.Forks...)
}

// StubReconcileCommand is a stub implementation of commands.Reconcile.
type StubReconcileCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.ReconcileOptions
}

var _ commands.Reconcile = (*StubReconcileCommand)(nil)

func (s *StubReconcileCommand) Execute(
	_ context.Context,
	opts commands.ReconcileOptions,
) (*commands.ReconcileReport, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return &commands.ReconcileReport{}, s.ExecuteErr
}
