// Package models contains domain models for promptlean.
package models

// UserProfile is a stored user profile. Profiles are created exactly once,
// never updated, and removed only by a full data wipe. Names are unique
// across all profiles (case-sensitive exact match).
type UserProfile struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	CreatedAtEpoch int64  `db:"created_at_epoch" json:"created_at_epoch"`
}
