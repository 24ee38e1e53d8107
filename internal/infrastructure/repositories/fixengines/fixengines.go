package fixengines

import (
	"github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/npm"
)

const (
	engineNode = "node"
	engineNpm  = "npm"

	// lockfileVersion 2 was introduced by npm 7.
	minNpmForLockfileV2 = "7"
)

// DetectorRepository raises engines.node and engines.npm to the minimal ranges
// the lockfile requires.
type DetectorRepository struct{}

// NewDetectorRepository creates the fix-engines detector.
func NewDetectorRepository() repositories.DetectorRepository {
	return &DetectorRepository{}
}

func (d *DetectorRepository) Kind() entities.RemediationKind {
	return entities.KindFixEngines
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

	required := requiredEngines(lockfile)
	detection := &entities.Detection{Kind: d.Kind()}

	proposedManifest := manifest.Clone()
	manifestEngines := proposedManifest.Get("engines")
	for _, engine := range []string{engineNode, engineNpm} {
		bound, ok := required[engine]
		if !ok {
			continue
		}
		current, _ := manifestEngines.Get(engine).Str()
		if satisfiesBound(current, bound) {
			continue
		}
		if manifestEngines == nil {
			manifestEngines = npm.NewObject()
			proposedManifest.Set("engines", manifestEngines)
		}
		proposed := ">=" + bound.String()
		manifestEngines.Set(engine, npm.NewString(proposed))
		detection.Changes = append(detection.Changes, entities.Change{
			Path:  entities.ManifestPath,
			Field: "engines." + engine,
			From:  current,
			To:    proposed,
		})
	}

	if !detection.HasChanges() {
		return detection, nil
	}

	detection.Files = append(detection.Files, entities.RenderedFile{
		Path: entities.ManifestPath,
		Content: npm.Render(
			proposedManifest, npm.DetectFormat(input.Manifest, input.EditorConfig, entities.ManifestPath),
		),
	})

	if proposedLockfile, changes := syncRootEngines(lockfile, proposedManifest.Get("engines")); len(changes) > 0 {
		detection.Changes = append(detection.Changes, changes...)
		detection.Files = append(detection.Files, entities.RenderedFile{
			Path: entities.LockfilePath,
			Content: npm.Render(
				proposedLockfile, npm.DetectFormat(input.Lockfile, input.EditorConfig, entities.LockfilePath),
			),
		})
	}
	return detection, nil
}

// requiredEngines derives the minimal engine versions from the lockfile.
func requiredEngines(lockfile *npm.Lockfile) map[string]*semver.Version {
	required := map[string]*semver.Version{}
	if bound, ok := npm.HighestLowerBound(lockfile.EngineRanges(engineNode)); ok {
		required[engineNode] = bound
	}
	if lockfile.Version() >= 2 {
		required[engineNpm] = semver.MustParse(minNpmForLockfileV2)
	}
	return required
}

// satisfiesBound reports a declared range whose own lower bound is at least bound.
func satisfiesBound(current string, bound *semver.Version) bool {
	if current == "" {
		return false
	}
	declared, ok := npm.LowerBound(current)
	if !ok {
		return false
	}
	return !declared.LessThan(bound)
}

// syncRootEngines copies the proposed engines into packages[""] of a v2/v3 lockfile.
func syncRootEngines(lockfile *npm.Lockfile, engines *npm.Node) (*npm.Node, []entities.Change) {
	if lockfile.Version() < 2 || lockfile.RootPackage() == nil || engines == nil {
		return nil, nil
	}

	proposed := lockfile.Root.Clone()
	root := proposed.Get("packages").Get("")
	rootEngines := root.Get("engines")

	var changes []entities.Change
	for _, engine := range []string{engineNode, engineNpm} {
		want, ok := engines.Get(engine).Str()
		if !ok {
			continue
		}
		have, _ := rootEngines.Get(engine).Str()
		if have == want {
			continue
		}
		if rootEngines == nil {
			rootEngines = npm.NewObject()
			root.Set("engines", rootEngines)
		}
		rootEngines.Set(engine, npm.NewString(want))
		changes = append(changes, entities.Change{
			Path:  entities.LockfilePath,
			Field: `packages[""].engines.` + engine,
			From:  have,
			To:    want,
		})
	}
	return proposed, changes
}
