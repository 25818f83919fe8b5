package constants

import "github.com/google/uuid"

// GenerateUUID returns a randomly generated UUIDv4 string.
func GenerateUUID() string {
	return uuid.NewString()
}
