//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sync"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
)

// StubDetectorRepository returns a fixed detection for its kind.
type StubDetectorRepository struct {
	mu sync.Mutex

	DetectorKind entities.RemediationKind
	Changes      []entities.Change
	Files        []entities.RenderedFile
	DetectErr    error
	Inputs       []entities.DetectionInput
}

var _ repositories.DetectorRepository = (*StubDetectorRepository)(nil)

func (d *StubDetectorRepository) Kind() entities.RemediationKind { return d.DetectorKind }

func (d *StubDetectorRepository) Detect(input entities.DetectionInput) (*entities.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Inputs = append(d.Inputs, input)
	if d.DetectErr != nil {
		return nil, d.DetectErr
	}
	return &entities.Detection{Kind: d.DetectorKind, Changes: d.Changes, Files: d.Files}, nil
}
