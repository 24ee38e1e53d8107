package entities

import "time"

const (
	ManifestPath     = "package.json"
	LockfilePath     = "package-lock.json"
	EditorConfigPath = ".editorconfig"
	WorkflowsDir     = ".github/workflows"

	// EncodingNone is reported by the host when it omits the content of a large file.
	EncodingNone = "none"
)

// CompetingLockfilePaths are lockfiles of package managers other than npm.
// Their presence means the npm lockfile is not authoritative.
func CompetingLockfilePaths() []string {
	return []string{"yarn.lock", "pnpm-lock.yaml", "npm-shrinkwrap.json"}
}

// ManifestFile is the content of a file at a given ref.
type ManifestFile struct {
	Path     string
	Content  []byte
	Encoding string
	SHA      string
	Size     int

	// LastModifiedAt is only populated for the lockfile, from the most recent
	// commit touching its path.
	LastModifiedAt time.Time
}

// Text returns the content as a string, tolerating a nil receiver.
func (f *ManifestFile) Text() string {
	if f == nil {
		return ""
	}
	return string(f.Content)
}
