package entities

// AnalysisContext is the per-repository working set built by the fetch stage.
// It is constructed once per repository per run and treated as immutable afterwards.
type AnalysisContext struct {
	Repository   Repository
	Manifest     *ManifestFile
	Lockfile     *ManifestFile
	EditorConfig *ManifestFile

	HasCIOnPullRequests bool
	// CIEvaluated is false when the workflow scan was skipped because the
	// manifest or the lockfile was missing.
	CIEvaluated bool

	IsAlreadyForked         bool
	HasCompetingLockfile    bool
	HasContributionTemplate bool
}

// HasManifestPair reports whether both the manifest and the lockfile were found.
func (c *AnalysisContext) HasManifestPair() bool {
	return c.Manifest != nil && c.Lockfile != nil
}
