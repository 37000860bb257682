package services

import (
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

var (
	// ErrCycleNotFound means the submission referenced no known cycle.
	ErrCycleNotFound = NewNotFoundError("survey cycle not found")
	// ErrCycleNotActive means the cycle exists but was deactivated.
	ErrCycleNotActive = NewNotFoundError("survey cycle is not active")
	// ErrCycleClosed means the cycle is active but now falls outside its window.
	ErrCycleClosed = NewInvalidError("survey cycle is not currently open")
)

// IsOpen reports whether the cycle accepts submissions at the given instant:
// it must be active and now must fall within [StartsAt, EndsAt] inclusive.
func IsOpen(c *models.Cycle, now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}

// ValidateForSubmission distinguishes the three rejection cases so the
// caller can surface distinct messages.
func ValidateForSubmission(c *models.Cycle, now time.Time) error {
	if c == nil {
		return ErrCycleNotFound
	}
	if !c.IsActive {
		return ErrCycleNotActive
	}
	if now.Before(c.StartsAt) || now.After(c.EndsAt) {
		return ErrCycleClosed
	}
	return nil
}
