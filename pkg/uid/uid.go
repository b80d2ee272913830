package uid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// Short generates a compact 12-character identifier suitable for public,
// shareable URLs. Collision odds are acceptable for human-facing ids backed
// by a uniqueness constraint.
func Short() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
