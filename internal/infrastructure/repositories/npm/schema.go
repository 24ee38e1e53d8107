package npm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// DependencySections are the manifest maps of package name to version spec.
func DependencySections() []string {
	return []string{"dependencies", "devDependencies", "optionalDependencies", "peerDependencies"}
}

var (
	schemasOnce      sync.Once
	manifestSchema   *jsonschema.Resolved
	lockfileSchema   *jsonschema.Resolved
	errSchemaResolve error
)

func stringMap() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
	}
}

func resolveSchemas() {
	manifest := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":    {Type: "string"},
			"version": {Type: "string"},
			"engines": stringMap(),
		},
	}
	for _, section := range DependencySections() {
		manifest.Properties[section] = stringMap()
	}

	minVersion, maxVersion := 1.0, 3.0
	lockfile := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"lockfileVersion"},
		Properties: map[string]*jsonschema.Schema{
			"lockfileVersion": {Type: "integer", Minimum: &minVersion, Maximum: &maxVersion},
			"packages":        {Type: "object"},
			"dependencies":    {Type: "object"},
		},
		AnyOf: []*jsonschema.Schema{
			{Required: []string{"packages"}},
			{Required: []string{"dependencies"}},
		},
	}

	if manifestSchema, errSchemaResolve = manifest.Resolve(nil); errSchemaResolve != nil {
		return
	}
	lockfileSchema, errSchemaResolve = lockfile.Resolve(nil)
}

// ValidateManifest checks the fields the pinning and engines detectors rely on.
func ValidateManifest(content string) error {
	return validate(content, "package.json", func() *jsonschema.Resolved { return manifestSchema })
}

// ValidateLockfile checks the lockfile shape the detectors rely on.
func ValidateLockfile(content string) error {
	return validate(content, "package-lock.json", func() *jsonschema.Resolved { return lockfileSchema })
}

func validate(content, path string, schema func() *jsonschema.Resolved) error {
	schemasOnce.Do(resolveSchemas)
	if errSchemaResolve != nil {
		return fmt.Errorf("resolving schemas: %w", errSchemaResolve)
	}

	var instance any
	if err := json.Unmarshal([]byte(content), &instance); err != nil {
		return fmt.Errorf("%w: %s is not valid JSON: %w", entities.ErrValidation, path, err)
	}
	if err := schema().Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %w", entities.ErrValidation, path, err)
	}
	return nil
}
