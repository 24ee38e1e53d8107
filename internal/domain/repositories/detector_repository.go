package repositories

import "github.com/rios0rios0/forkfix/internal/domain/entities"

// DetectorRepository is one remediation detector. Detectors are pure: they
// never write anything and return entities.ErrValidation for inputs they refuse.
type DetectorRepository interface {
	// Kind returns the remediation kind this detector proposes.
	Kind() entities.RemediationKind

	// Detect computes the proposed files and the change list. An empty change
	// list means "no change".
	Detect(input entities.DetectionInput) (*entities.Detection, error)
}
