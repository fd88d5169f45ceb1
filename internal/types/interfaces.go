package types

import "context"

// ActivityRepository provides read access to the activity catalog.
type ActivityRepository interface {
	// ListActive returns active activities ordered by sort order, then name.
	ListActive(ctx context.Context) ([]ActivityType, error)
	GetBySlug(ctx context.Context, slug string) (*ActivityType, error)
}

// UserActivityRepository provides the per-user activity selections.
type UserActivityRepository interface {
	// ListForUser returns the user's chosen activities with their overrides,
	// primary activity first.
	ListForUser(ctx context.Context, userID string) ([]UserActivity, error)
}

// UserRepository provides the user profile fields the outlook needs.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}
