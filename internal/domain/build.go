package domain

import (
	"time"

	"github.com/google/uuid"
)

// Build is one run of the compiler: a completed dictionary plus the
// identity every sink stamps on its output.
type Build struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Version    string
	Dictionary *Dictionary
}
