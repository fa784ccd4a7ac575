package util

import "github.com/google/uuid"

// RandomName returns a fresh version-4 UUID string. Used to name jobs and
// job-scoped temp directories; collisions are not handled because a UUIDv4
// collision is not a realistic failure mode.
func RandomName() string {
	return uuid.NewString()
}
