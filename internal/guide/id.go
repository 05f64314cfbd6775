package guide

import "github.com/google/uuid"

// generateID creates a random session ID.
func generateID() string {
	return uuid.NewString()
}

// shortID trims a session ID for log lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
