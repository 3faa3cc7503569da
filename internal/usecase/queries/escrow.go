package queries

import (
	"context"

	"github.com/google/uuid"
)

// EscrowStatsView aggregates a user's escrow movements for reporting.
// Read-only; no side effects.
type EscrowStatsView struct {
	UserID        uuid.UUID `json:"user_id"`
	HeldTotal     int64     `json:"held_total"`
	ReleasedTotal int64     `json:"released_total"`
	RefundedTotal int64     `json:"refunded_total"`
	HeldCount     int64     `json:"held_count"`
	ReleasedCount int64     `json:"released_count"`
	RefundedCount int64     `json:"refunded_count"`
}

type EscrowQueries interface {
	StatsByUser(ctx context.Context, userID uuid.UUID) (*EscrowStatsView, error)
}

type EscrowReadStore interface {
	StatsByUser(ctx context.Context, userID uuid.UUID) (*EscrowStatsView, error)
}

type escrowQueriesImpl struct {
	readStore EscrowReadStore
}

func NewEscrowQueries(readStore EscrowReadStore) EscrowQueries {
	return &escrowQueriesImpl{readStore: readStore}
}

func (q *escrowQueriesImpl) StatsByUser(ctx context.Context, userID uuid.UUID) (*EscrowStatsView, error) {
	return q.readStore.StatsByUser(ctx, userID)
}
