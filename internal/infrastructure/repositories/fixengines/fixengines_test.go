//go:build unit

package fixengines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/fixengines"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/npm"
)

const lockfileV2 = `{
  "name": "demo",
  "lockfileVersion": 2,
  "packages": {
    "": {
      "name": "demo"
    },
    "node_modules/a": {"version": "1.0.0", "engines": {"node": ">=12"}},
    "node_modules/b": {"version": "1.0.0", "engines": {"node": "^14.17.0 || >=16"}},
    "node_modules/c": {"version": "1.0.0", "engines": ["node >= 0.8"]}
  }
}
`

func TestDetectorRepositoryDetect(t *testing.T) {
	t.Parallel()

	t.Run("should declare node and npm ranges in the manifest and the lockfile root", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()
		input := entities.DetectionInput{
			Manifest: "{\n  \"name\": \"demo\"\n}\n",
			Lockfile: lockfileV2,
		}

		// when
		detection, err := detector.Detect(input)

		// then
		require.NoError(t, err)
		assert.Contains(t, detection.Changes, entities.Change{
			Path: entities.ManifestPath, Field: "engines.node", To: ">=14.17.0",
		})
		assert.Contains(t, detection.Changes, entities.Change{
			Path: entities.ManifestPath, Field: "engines.npm", To: ">=7.0.0",
		})
		require.Len(t, detection.Files, 2)

		manifest, err := npm.Parse(detection.Files[0].Content)
		require.NoError(t, err)
		node, _ := manifest.Get("engines").Get("node").Str()
		assert.Equal(t, ">=14.17.0", node)

		lockfile, err := npm.ParseLockfile(detection.Files[1].Content)
		require.NoError(t, err)
		rootNpm, _ := lockfile.RootPackage().Get("engines").Get("npm").Str()
		assert.Equal(t, ">=7.0.0", rootNpm)
		assert.Equal(t, entities.LockfilePath, detection.Files[1].Path)
	})

	t.Run("should keep declared ranges that are already strict enough", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()
		input := entities.DetectionInput{
			Manifest: `{"name":"demo","engines":{"node":">=18","npm":">=9"}}`,
			Lockfile: lockfileV2,
		}

		// when
		detection, err := detector.Detect(input)

		// then
		require.NoError(t, err)
		assert.False(t, detection.HasChanges())
	})

	t.Run("should raise a declared range below the requirement", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()
		input := entities.DetectionInput{
			Manifest: `{"name":"demo","engines":{"node":">=10","npm":">=8"}}`,
			Lockfile: lockfileV2,
		}

		// when
		detection, err := detector.Detect(input)

		// then
		require.NoError(t, err)
		assert.Contains(t, detection.Changes, entities.Change{
			Path: entities.ManifestPath, Field: "engines.node", From: ">=10", To: ">=14.17.0",
		})
		for _, change := range detection.Changes {
			assert.NotEqual(t, "engines.npm", change.Field)
		}
	})

	t.Run("should not require npm 7 for version 1 lockfiles", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()
		input := entities.DetectionInput{
			Manifest: `{"name":"demo"}`,
			Lockfile: `{"lockfileVersion":1,"dependencies":{"a":{"version":"1.0.0"}}}`,
		}

		// when
		detection, err := detector.Detect(input)

		// then
		require.NoError(t, err)
		assert.False(t, detection.HasChanges())
	})

	t.Run("should report no change on its own output", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()
		first, err := detector.Detect(entities.DetectionInput{Manifest: `{"name":"demo"}`, Lockfile: lockfileV2})
		require.NoError(t, err)
		require.Len(t, first.Files, 2)

		// when
		second, err := detector.Detect(entities.DetectionInput{
			Manifest: first.Files[0].Content,
			Lockfile: first.Files[1].Content,
		})

		// then
		require.NoError(t, err)
		assert.False(t, second.HasChanges())
	})

	t.Run("should return a validation error when engines is not an object", func(t *testing.T) {
		// given
		detector := fixengines.NewDetectorRepository()

		// when
		_, err := detector.Detect(entities.DetectionInput{Manifest: `{"engines":">=14"}`, Lockfile: lockfileV2})

		// then
		require.ErrorIs(t, err, entities.ErrValidation)
	})
}
