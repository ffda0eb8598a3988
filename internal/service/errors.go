package service

import "errors"

var (
	// ErrNotFound is returned when a section or section type does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned for operations disabled by configuration.
	ErrForbidden = errors.New("operation is disabled")
	// ErrInvalidOrder is returned when a reorder request is not a permutation of the page's sections.
	ErrInvalidOrder = errors.New("section ids must list every section of the page exactly once")
	// ErrInvalidMode is returned for an unknown render mode name.
	ErrInvalidMode = errors.New("invalid render mode")
	// ErrAlreadyMigrated is returned when a section is already a hero variant.
	ErrAlreadyMigrated = errors.New("section already uses a hero variant")
	// ErrNotLegacyHero is returned when migrating a section that is not a legacy hero.
	ErrNotLegacyHero = errors.New("only legacy hero sections can be migrated")
	// ErrFactoryUnavailable is returned by factory operations when no factory is configured.
	ErrFactoryUnavailable = errors.New("section factory is not configured")
)
