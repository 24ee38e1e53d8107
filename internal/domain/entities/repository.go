package entities

import (
	"fmt"
	"strings"
)

// OwnerType distinguishes personal accounts from organizations on the host.
type OwnerType string

const (
	OwnerTypeUser         OwnerType = "user"
	OwnerTypeOrganization OwnerType = "organization"
)

// ParseOwnerType converts a CLI/config value into an OwnerType.
// An empty value yields an empty OwnerType, meaning "no owner-type filtering".
func ParseOwnerType(value string) (OwnerType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "user":
		return OwnerTypeUser, nil
	case "organization", "org":
		return OwnerTypeOrganization, nil
	default:
		return "", fmt.Errorf("unknown owner type %q (expected user or organization)", value)
	}
}

// Repository is a read-only snapshot of a hosted repository taken once per run.
type Repository struct {
	Owner         string
	Name          string
	Archived      bool
	StarCount     int
	OwnerType     OwnerType
	DefaultBranch string
	IsFork        bool
	Source        *Repository // upstream repository, only present for forks
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Key returns the identity of the repository.
func (r Repository) Key() RepositoryKey {
	return RepositoryKey{Owner: r.Owner, Name: r.Name}
}

// RepositoryKey identifies a repository by owner and name.
// It is also the machine-readable output of the discover step.
type RepositoryKey struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (k RepositoryKey) String() string {
	return k.Owner + "/" + k.Name
}

// ParseRepositoryKey parses an "owner/name" string.
func ParseRepositoryKey(value string) (RepositoryKey, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryKey{}, fmt.Errorf("invalid repository %q (expected owner/name)", value)
	}
	return RepositoryKey{Owner: owner, Name: name}, nil
}
