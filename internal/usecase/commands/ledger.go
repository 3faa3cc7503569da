package commands

import (
	"context"

	"skillmarket/internal/domain/booking"
	"skillmarket/internal/domain/escrow"
	"skillmarket/internal/infra"
	"skillmarket/internal/pkg/clock"
	"skillmarket/internal/pkg/errs"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
)

// EscrowLedger moves held credits between the learner, the platform and the
// provider. Every operation must run inside the caller's transaction; the
// wallet adjustments and the escrow status change either all apply or none.
//
// Conservation invariant: hold moves amount from the learner's credits to the
// learner's held_credits; refund moves it back; release moves it off the
// learner's held_credits onto the provider's credits/earned_credits. No
// operation creates or destroys credits.
type EscrowLedger struct {
	clock clock.Clock
}

func NewEscrowLedger(clock clock.Clock) *EscrowLedger {
	return &EscrowLedger{clock: clock}
}

// Hold debits the learner and opens a HELD escrow tied 1:1 to the booking.
// Fails when the learner's spendable credits are below the session cost.
func (l *EscrowLedger) Hold(ctx context.Context, tx shared.Tx, b *booking.Booking) (*escrow.Transaction, error) {
	wallet, err := tx.Wallets().FindForUpdate(ctx, tx.DB(), b.LearnerID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrUserNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	amount := b.SessionCost().Amount()
	if wallet.Spendable() < amount {
		return nil, errs.ErrInsufficientCredits
	}

	hold, err := escrow.NewHold(b.ID(), b.LearnerID(), b.ProviderID(), amount, l.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := tx.Wallets().AdjustBalances(ctx, tx.DB(), b.LearnerID(), -amount, amount, 0); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Escrows().Create(ctx, tx.DB(), hold); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// unique(booking_id): at most one escrow per booking
			return nil, errs.Mark(err, errs.ErrDomainValidation)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return hold, nil
}

// Release pays the held amount out to the provider. HELD escrows only;
// terminal escrows reject the call and no balance moves.
func (l *EscrowLedger) Release(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*escrow.Transaction, error) {
	esc, err := l.lockedEscrow(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := esc.Release(l.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrEscrowNotHeld)
	}

	amount := esc.Amount()
	if err := tx.Wallets().AdjustBalances(ctx, tx.DB(), esc.LearnerID(), 0, -amount, 0); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Wallets().AdjustBalances(ctx, tx.DB(), esc.ProviderID(), amount, 0, amount); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Escrows().Update(ctx, tx.DB(), esc); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return esc, nil
}

// Refund returns the held amount to the learner. HELD escrows only.
func (l *EscrowLedger) Refund(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*escrow.Transaction, error) {
	esc, err := l.lockedEscrow(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := esc.Refund(l.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrEscrowNotHeld)
	}

	amount := esc.Amount()
	if err := tx.Wallets().AdjustBalances(ctx, tx.DB(), esc.LearnerID(), amount, -amount, 0); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Escrows().Update(ctx, tx.DB(), esc); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return esc, nil
}

func (l *EscrowLedger) lockedEscrow(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*escrow.Transaction, error) {
	esc, err := tx.Escrows().FindByBookingIDForUpdate(ctx, tx.DB(), bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrEscrowNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return esc, nil
}
