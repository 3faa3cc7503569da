package shared

import (
	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on read-side query types.

type SkillSnapshot struct {
	ID              uuid.UUID
	ProviderID      uuid.UUID
	Name            string
	DurationMinutes int
	SessionCost     int64
	IsActive        bool
}

type WalletSnapshot struct {
	UserID        uuid.UUID
	Credits       int64
	HeldCredits   int64
	EarnedCredits int64
}

// Spendable is what the learner can still place on hold.
func (w WalletSnapshot) Spendable() int64 {
	return w.Credits
}
