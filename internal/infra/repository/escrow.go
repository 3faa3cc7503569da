package repository

import (
	"context"

	"skillmarket/internal/domain/escrow"
	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type EscrowRepository struct{}

func NewEscrowRepository() *EscrowRepository {
	return &EscrowRepository{}
}

const insertEscrowSQL = `
INSERT INTO escrow_transactions (
    id, booking_id, learner_id, provider_id,
    amount, status, held_at, released_at, refunded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *EscrowRepository) Create(ctx context.Context, dbtx db.DBTX, t *escrow.Transaction) error {
	_, err := dbtx.Exec(ctx, insertEscrowSQL,
		pgconv.UUIDToPgtype(t.ID()),
		pgconv.UUIDToPgtype(t.BookingID()),
		pgconv.UUIDToPgtype(t.LearnerID()),
		pgconv.UUIDToPgtype(t.ProviderID()),
		t.Amount(),
		pgconv.StringToPgtype(t.Status().String()),
		pgconv.TimeToPgtype(t.HeldAt()),
		pgconv.TimePtrToPgtype(t.ReleasedAt()),
		pgconv.TimePtrToPgtype(t.RefundedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create escrow transaction", err)
	}
	return nil
}

// The unique index on booking_id makes this lock the single escrow row.
const selectEscrowForUpdateSQL = `
SELECT id, booking_id, learner_id, provider_id,
       amount, status, held_at, released_at, refunded_at
FROM escrow_transactions
WHERE booking_id = $1
FOR UPDATE`

func (r *EscrowRepository) FindByBookingIDForUpdate(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID) (*escrow.Transaction, error) {
	var row escrowRow
	err := dbtx.QueryRow(ctx, selectEscrowForUpdateSQL, pgconv.UUIDToPgtype(bookingID)).Scan(
		&row.ID, &row.BookingID, &row.LearnerID, &row.ProviderID,
		&row.Amount, &row.Status, &row.HeldAt, &row.ReleasedAt, &row.RefundedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("escrow transaction not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find escrow transaction for update", err)
	}

	return rowToEscrow(row)
}

const updateEscrowSQL = `
UPDATE escrow_transactions
SET status = $2,
    released_at = $3,
    refunded_at = $4
WHERE id = $1`

func (r *EscrowRepository) Update(ctx context.Context, dbtx db.DBTX, t *escrow.Transaction) error {
	tag, err := dbtx.Exec(ctx, updateEscrowSQL,
		pgconv.UUIDToPgtype(t.ID()),
		pgconv.StringToPgtype(t.Status().String()),
		pgconv.TimePtrToPgtype(t.ReleasedAt()),
		pgconv.TimePtrToPgtype(t.RefundedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update escrow transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("escrow transaction not found", nil, infra.KindNotFound)
	}
	return nil
}

type escrowRow struct {
	ID         pgtype.UUID
	BookingID  pgtype.UUID
	LearnerID  pgtype.UUID
	ProviderID pgtype.UUID
	Amount     int64
	Status     pgtype.Text
	HeldAt     pgtype.Timestamptz
	ReleasedAt pgtype.Timestamptz
	RefundedAt pgtype.Timestamptz
}

func rowToEscrow(row escrowRow) (*escrow.Transaction, error) {
	status, err := escrow.NewStatus(row.Status.String)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt escrow status", err)
	}

	return escrow.ReconstructTransaction(
		uuid.UUID(row.ID.Bytes),
		uuid.UUID(row.BookingID.Bytes),
		uuid.UUID(row.LearnerID.Bytes),
		uuid.UUID(row.ProviderID.Bytes),
		row.Amount,
		status,
		pgconv.TimeFromPgtype(row.HeldAt),
		pgconv.TimePtrFromPgtype(row.ReleasedAt),
		pgconv.TimePtrFromPgtype(row.RefundedAt),
	), nil
}
