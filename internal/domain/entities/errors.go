package entities

import "errors"

var (
	// ErrNotFound marks a missing content, pull request or profile. Never fatal for lookups.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a manifest or lockfile rejected by a detector's schema check.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks an already existing branch ref or an already open proposal.
	ErrConflict = errors.New("conflict")

	// ErrUpstreamMissing marks a repository that is not a fork or has no source repository.
	ErrUpstreamMissing = errors.New("upstream repository missing")

	// ErrMissingConfiguration marks a required setting absent at start-up.
	ErrMissingConfiguration = errors.New("missing configuration")
)
