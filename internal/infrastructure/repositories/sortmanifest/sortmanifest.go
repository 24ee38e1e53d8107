package sortmanifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/npm"
)

// DetectorRepository rewrites package.json in the conventional field order.
type DetectorRepository struct{}

// NewDetectorRepository creates the sort-manifest detector.
func NewDetectorRepository() repositories.DetectorRepository {
	return &DetectorRepository{}
}

func (d *DetectorRepository) Kind() entities.RemediationKind {
	return entities.KindSortManifest
}

// Detect only requires the manifest to be a JSON object. The lockfile is not read.
func (d *DetectorRepository) Detect(input entities.DetectionInput) (*entities.Detection, error) {
	manifest, err := npm.Parse(input.Manifest)
	if err != nil {
		return nil, err
	}
	if !manifest.IsObject() {
		return nil, fmt.Errorf("%w: manifest is not an object", entities.ErrValidation)
	}

	sorted := Sort(manifest)
	detection := &entities.Detection{Kind: d.Kind()}
	if cmp.Equal(manifest, sorted) {
		return detection, nil
	}

	detection.Changes = orderChanges(manifest, sorted)

	detection.Files = []entities.RenderedFile{{
		Path:    entities.ManifestPath,
		Content: npm.Render(sorted, npm.DetectFormat(input.Manifest, input.EditorConfig, entities.ManifestPath)),
	}}
	return detection, nil
}

// Sort returns a copy of manifest with top-level fields in conventional order
// and dependency-like maps sorted by key. Sort(Sort(m)) equals Sort(m).
func Sort(manifest *npm.Node) *npm.Node {
	sorted := manifest.Clone()
	rank := map[string]int{}
	for i, key := range fieldOrder() {
		rank[key] = i
	}

	sort.SliceStable(sorted.Members, func(i, j int) bool {
		left, leftKnown := rank[sorted.Members[i].Key]
		right, rightKnown := rank[sorted.Members[j].Key]
		switch {
		case leftKnown && rightKnown:
			return left < right
		case leftKnown != rightKnown:
			return leftKnown
		default:
			return sorted.Members[i].Key < sorted.Members[j].Key
		}
	})

	maps := sortedMaps()
	for _, member := range sorted.Members {
		if maps[member.Key] && member.Value.IsObject() {
			sort.SliceStable(member.Value.Members, func(i, j int) bool {
				return member.Value.Members[i].Key < member.Value.Members[j].Key
			})
		}
	}
	return sorted
}

// orderChanges describes each object whose key order differs after sorting.
func orderChanges(manifest, sorted *npm.Node) []entities.Change {
	var changes []entities.Change
	if before, after := manifest.Keys(), sorted.Keys(); !cmp.Equal(before, after) {
		changes = append(changes, entities.Change{
			Path:  entities.ManifestPath,
			Field: "(top-level)",
			From:  strings.Join(before, ", "),
			To:    strings.Join(after, ", "),
		})
	}
	for _, member := range sorted.Members {
		if !member.Value.IsObject() {
			continue
		}
		before, after := manifest.Get(member.Key).Keys(), member.Value.Keys()
		if cmp.Equal(before, after) {
			continue
		}
		changes = append(changes, entities.Change{
			Path:  entities.ManifestPath,
			Field: member.Key,
			From:  strings.Join(before, ", "),
			To:    strings.Join(after, ", "),
		})
	}
	return changes
}
