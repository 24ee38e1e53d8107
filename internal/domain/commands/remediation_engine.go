package commands

import (
	"errors"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	infraRepos "github.com/rios0rios0/forkfix/internal/infrastructure/repositories"
)

// Assessment reasons.
const (
	ReasonApproved       = "approved"
	ReasonNoChange       = "no_change"
	ReasonInvalidInput   = "invalid_input"
	ReasonDetectorFailed = "detector_failed"
	ReasonRejectedBefore = "rejected_before"
	ReasonNotRegistered  = "not_registered"
)

// Assessment is the verdict of one detector on one repository.
type Assessment struct {
	Kind      entities.RemediationKind
	Detection *entities.Detection
	Approved  bool
	Reason    string
}

// RemediationEngine runs the detectors and gates them on one shared ledger snapshot.
type RemediationEngine struct {
	detectors *infraRepos.DetectorRegistry
}

// NewRemediationEngine creates an engine over the registered detectors.
func NewRemediationEngine(detectors *infraRepos.DetectorRegistry) *RemediationEngine {
	return &RemediationEngine{detectors: detectors}
}

// Assess evaluates every kind independently. A detector refusing its input
// only means "no change" for that kind.
func (it *RemediationEngine) Assess(
	input entities.DetectionInput,
	snapshot entities.LedgerSnapshot,
	kinds []entities.RemediationKind,
) []Assessment {
	assessments := make([]Assessment, 0, len(kinds))
	for _, kind := range kinds {
		assessments = append(assessments, it.assess(input, snapshot, kind))
	}
	return assessments
}

func (it *RemediationEngine) assess(
	input entities.DetectionInput,
	snapshot entities.LedgerSnapshot,
	kind entities.RemediationKind,
) Assessment {
	assessment := Assessment{Kind: kind}
	entry := logger.WithFields(logger.Fields{"repository": input.Repository.FullName(), "kind": kind})

	detector := it.detectors.Get(kind)
	if detector == nil {
		assessment.Reason = ReasonNotRegistered
		return assessment
	}

	detection, err := detector.Detect(input)
	switch {
	case errors.Is(err, entities.ErrValidation):
		entry.Warnf("Input refused, treating as no change: %v", err)
		assessment.Reason = ReasonInvalidInput
		return assessment
	case err != nil:
		entry.Errorf("Detector failed: %v", err)
		assessment.Reason = ReasonDetectorFailed
		return assessment
	}

	assessment.Detection = detection
	switch {
	case !detection.HasChanges():
		assessment.Reason = ReasonNoChange
	case !snapshot.CanPropose(kind):
		assessment.Reason = ReasonRejectedBefore
	default:
		assessment.Approved = true
		assessment.Reason = ReasonApproved
	}
	entry.Debugf("Assessed: %s", assessment.Reason)
	return assessment
}

// AnyApproved reports whether at least one kind is actionable.
func AnyApproved(assessments []Assessment) bool {
	for _, assessment := range assessments {
		if assessment.Approved {
			return true
		}
	}
	return false
}
