package repository

import (
	"context"

	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// WalletRepository manages the credit balance columns on users. Balances are
// always read under FOR UPDATE so concurrent holds serialize per user.
type WalletRepository struct{}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{}
}

const selectWalletForUpdateSQL = `
SELECT id, credits, held_credits, earned_credits
FROM users
WHERE id = $1
FOR UPDATE`

func (r *WalletRepository) FindForUpdate(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (*shared.WalletSnapshot, error) {
	var (
		id     pgtype.UUID
		wallet shared.WalletSnapshot
	)
	row := dbtx.QueryRow(ctx, selectWalletForUpdateSQL, pgconv.UUIDToPgtype(userID))
	if err := row.Scan(&id, &wallet.Credits, &wallet.HeldCredits, &wallet.EarnedCredits); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user wallet not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock user wallet", err)
	}

	wallet.UserID = uuid.UUID(id.Bytes)
	return &wallet, nil
}

// CHECK constraints on the balance columns reject any drift below zero.
const adjustBalancesSQL = `
UPDATE users
SET credits        = credits + $2,
    held_credits   = held_credits + $3,
    earned_credits = earned_credits + $4,
    updated_at     = now()
WHERE id = $1`

func (r *WalletRepository) AdjustBalances(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, creditsDelta, heldDelta, earnedDelta int64) error {
	tag, err := dbtx.Exec(ctx, adjustBalancesSQL,
		pgconv.UUIDToPgtype(userID), creditsDelta, heldDelta, earnedDelta)
	if err != nil {
		return infra.WrapRepoErr("failed to adjust wallet balances", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user wallet not found", nil, infra.KindNotFound)
	}
	return nil
}
