package shared

import (
	"context"
	"time"

	"skillmarket/internal/domain/booking"
	"skillmarket/internal/domain/escrow"
	"skillmarket/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Escrows() EscrowRepository
	Wallets() WalletRepository
	Users() UserRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads are the write-side lookups commands need before or during a
// transaction. Outside a transaction they are advisory only; the
// authoritative versions run again against the transaction's DBTX.
type CommandReads interface {
	SkillByID(ctx context.Context, id uuid.UUID) (*SkillSnapshot, error)
	// HasSlotConflict is the advisory pre-check: it reports whether any slot-
	// blocking booking of the provider intersects the buffer-expanded window.
	HasSlotConflict(ctx context.Context, providerID uuid.UUID, window booking.SessionWindow, bufferMinutes int, excludeBookingID *uuid.UUID) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error
	// FindByIDForUpdate locks the booking row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error
	// CountOverlapping is the authoritative recount: slot-blocking bookings of
	// the provider whose [start_at, end_at) intersects the given interval.
	CountOverlapping(ctx context.Context, dbtx db.DBTX, providerID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int64, error)
}

type EscrowRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, t *escrow.Transaction) error
	FindByBookingIDForUpdate(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID) (*escrow.Transaction, error)
	Update(ctx context.Context, dbtx db.DBTX, t *escrow.Transaction) error
}

type WalletRepository interface {
	// FindForUpdate locks the user's balance row for the transaction.
	FindForUpdate(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (*WalletSnapshot, error)
	// AdjustBalances applies deltas to credits / held_credits / earned_credits.
	AdjustBalances(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, creditsDelta, heldDelta, earnedDelta int64) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
