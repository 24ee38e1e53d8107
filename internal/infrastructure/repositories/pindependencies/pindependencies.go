package pindependencies

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/npm"
)

// DetectorRepository replaces range specs with the exact versions the lockfile resolved.
type DetectorRepository struct{}

// NewDetectorRepository creates the pin-dependencies detector.
func NewDetectorRepository() repositories.DetectorRepository {
	return &DetectorRepository{}
}

// pinnedSections are the maps whose ranges get pinned. Peer ranges express
// compatibility, not an install, so they are left alone.
func pinnedSections() []string {
	return []string{"dependencies", "devDependencies", "optionalDependencies"}
}

func (d *DetectorRepository) Kind() entities.RemediationKind {
	return entities.KindPinDependencies
}

func (d *DetectorRepository) Detect(input entities.DetectionInput) (*entities.Detection, error) {
	if err := npm.ValidateManifest(input.Manifest); err != nil {
		return nil, err
	}
	if err := npm.ValidateLockfile(input.Lockfile); err != nil {
		return nil, err
	}

	manifest, err := npm.Parse(input.Manifest)
	if err != nil {
		return nil, err
	}
	lockfile, err := npm.ParseLockfile(input.Lockfile)
	if err != nil {
		return nil, err
	}

	detection := &entities.Detection{Kind: d.Kind()}
	proposed := manifest.Clone()

	for _, section := range pinnedSections() {
		dependencies := proposed.Get(section)
		if !dependencies.IsObject() {
			continue
		}
		for i, member := range dependencies.Members {
			spec, _ := member.Value.Str()
			pinned, ok := pin(lockfile, member.Key, spec)
			if !ok {
				continue
			}
			dependencies.Members[i].Value = npm.NewString(pinned)
			detection.Changes = append(detection.Changes, entities.Change{
				Path:  entities.ManifestPath,
				Field: fmt.Sprintf("%s.%s", section, member.Key),
				From:  spec,
				To:    pinned,
			})
		}
	}

	if !detection.HasChanges() {
		return detection, nil
	}

	format := npm.DetectFormat(input.Manifest, input.EditorConfig, entities.ManifestPath)
	detection.Files = []entities.RenderedFile{{
		Path:    entities.ManifestPath,
		Content: npm.Render(proposed, format),
	}}
	return detection, nil
}

// pin returns the exact version for spec, when spec is a registry range the
// lockfile resolved to a version that still satisfies it.
func pin(lockfile *npm.Lockfile, name, spec string) (string, bool) {
	if !npm.IsRegistryRange(spec) || npm.IsExactVersion(spec) {
		return "", false
	}
	locked, ok := lockfile.LockedVersion(name)
	if !ok || !npm.Satisfies(locked, spec) {
		return "", false
	}
	return strings.TrimPrefix(locked, "v"), true
}
