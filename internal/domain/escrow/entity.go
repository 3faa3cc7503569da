package escrow

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus   = errors.New("invalid escrow status")
	ErrNotHeld         = errors.New("escrow is not in held status")
	ErrNonPositiveHold = errors.New("hold amount must be positive")
)

// Transaction is the money-movement record for exactly one booking.
// amount equals the booking's session cost at hold time and never changes.
type Transaction struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	learnerID  uuid.UUID
	providerID uuid.UUID
	amount     int64
	status     Status
	heldAt     time.Time
	releasedAt *time.Time
	refundedAt *time.Time
}

// NewHold opens the escrow for a booking, starting in HELD.
func NewHold(bookingID, learnerID, providerID uuid.UUID, amount int64, now time.Time) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveHold
	}
	return &Transaction{
		id:         uuid.New(),
		bookingID:  bookingID,
		learnerID:  learnerID,
		providerID: providerID,
		amount:     amount,
		status:     StatusHeld,
		heldAt:     now,
	}, nil
}

func ReconstructTransaction(
	id, bookingID, learnerID, providerID uuid.UUID,
	amount int64,
	status Status,
	heldAt time.Time,
	releasedAt, refundedAt *time.Time,
) *Transaction {
	return &Transaction{
		id:         id,
		bookingID:  bookingID,
		learnerID:  learnerID,
		providerID: providerID,
		amount:     amount,
		status:     status,
		heldAt:     heldAt,
		releasedAt: releasedAt,
		refundedAt: refundedAt,
	}
}

// Release pays the held amount out to the provider. HELD only.
func (t *Transaction) Release(now time.Time) error {
	if t.status != StatusHeld {
		return ErrNotHeld
	}
	t.status = StatusReleased
	t.releasedAt = &now
	return nil
}

// Refund returns the held amount to the learner. HELD only.
func (t *Transaction) Refund(now time.Time) error {
	if t.status != StatusHeld {
		return ErrNotHeld
	}
	t.status = StatusRefunded
	t.refundedAt = &now
	return nil
}

func (t *Transaction) ID() uuid.UUID         { return t.id }
func (t *Transaction) BookingID() uuid.UUID  { return t.bookingID }
func (t *Transaction) LearnerID() uuid.UUID  { return t.learnerID }
func (t *Transaction) ProviderID() uuid.UUID { return t.providerID }
func (t *Transaction) Amount() int64         { return t.amount }
func (t *Transaction) Status() Status        { return t.status }
func (t *Transaction) HeldAt() time.Time     { return t.heldAt }
func (t *Transaction) ReleasedAt() *time.Time { return t.releasedAt }
func (t *Transaction) RefundedAt() *time.Time { return t.refundedAt }
