package util

import "github.com/google/uuid"

// NewID returns a random identifier for sessions and turns.
func NewID() string {
	return uuid.NewString()
}
