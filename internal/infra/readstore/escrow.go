package readstore

import (
	"context"

	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"
	"skillmarket/internal/usecase/queries"

	"github.com/google/uuid"
)

type EscrowReadStore struct {
	db db.DBTX
}

func NewEscrowReadStore(dbtx db.DBTX) *EscrowReadStore {
	return &EscrowReadStore{db: dbtx}
}

// A user appears on either side of an escrow; totals cover both roles.
const escrowStatsSQL = `
SELECT
    COALESCE(SUM(amount) FILTER (WHERE status = 'held'), 0),
    COALESCE(SUM(amount) FILTER (WHERE status = 'released'), 0),
    COALESCE(SUM(amount) FILTER (WHERE status = 'refunded'), 0),
    COUNT(*) FILTER (WHERE status = 'held'),
    COUNT(*) FILTER (WHERE status = 'released'),
    COUNT(*) FILTER (WHERE status = 'refunded')
FROM escrow_transactions
WHERE learner_id = $1 OR provider_id = $1`

func (r *EscrowReadStore) StatsByUser(ctx context.Context, userID uuid.UUID) (*queries.EscrowStatsView, error) {
	view := &queries.EscrowStatsView{UserID: userID}

	err := r.db.QueryRow(ctx, escrowStatsSQL, pgconv.UUIDToPgtype(userID)).Scan(
		&view.HeldTotal, &view.ReleasedTotal, &view.RefundedTotal,
		&view.HeldCount, &view.ReleasedCount, &view.RefundedCount,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate escrow stats", err)
	}

	return view, nil
}
