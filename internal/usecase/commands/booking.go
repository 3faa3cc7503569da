package commands

import (
	"context"
	"errors"
	"time"

	"skillmarket/internal/domain/booking"
	"skillmarket/internal/infra"
	"skillmarket/internal/pkg/clock"
	"skillmarket/internal/pkg/config"
	"skillmarket/internal/pkg/errs"
	"skillmarket/internal/usecase/queries"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateBookingParams struct {
	LearnerID     uuid.UUID
	SkillID       uuid.UUID
	PreferredDate time.Time
	PreferredTime string
}

// BookingCommands is the write-side API over bookings. Every operation runs
// in a single transaction: the status change and any credit movement either
// both commit or both roll back.
type BookingCommands interface {
	CreateBooking(ctx context.Context, p CreateBookingParams) (*queries.BookingView, error)
	AcceptBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error)
	DeclineBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*queries.BookingView, error)
	CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*queries.BookingView, error)
	CompleteSession(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error)
	RequestReschedule(ctx context.Context, actorID, bookingID uuid.UUID, newDate time.Time, newTime, reason string) (*queries.BookingView, error)
	AcceptReschedule(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error)
	DeclineReschedule(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow            shared.UnitOfWork
	ledger         *EscrowLedger
	bookingQueries queries.BookingQueries
	notifier       Notifier
	clock          clock.Clock
	cfg            config.BookingConfig
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	ledger *EscrowLedger,
	bookingQueries queries.BookingQueries,
	notifier Notifier,
	clock clock.Clock,
	cfg config.BookingConfig,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:            uow,
		ledger:         ledger,
		bookingQueries: bookingQueries,
		notifier:       notifier,
		clock:          clock,
		cfg:            cfg,
	}
}

func (s *bookingCommandsImpl) cancelCutoff() time.Duration {
	return time.Duration(s.cfg.CancelCutoffMinutes) * time.Minute
}

// CreateBooking schedules a session and holds its cost in escrow.
//
// The advisory pre-check outside the transaction rejects obviously taken
// slots cheaply. The recount inside the transaction, under the provider's
// row lock, is the authoritative one: two concurrent creations for
// overlapping windows serialize on that lock, and the loser sees the
// winner's row and fails with the slot-conflict error.
func (s *bookingCommandsImpl) CreateBooking(ctx context.Context, p CreateBookingParams) (*queries.BookingView, error) {
	skill, err := s.uow.CommandReads().SkillByID(ctx, p.SkillID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrSkillNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !skill.IsActive {
		return nil, errs.ErrSkillNotFound
	}

	cost, err := booking.NewCredits(skill.SessionCost)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	b, err := booking.NewBooking(
		skill.ProviderID, p.LearnerID, p.SkillID,
		p.PreferredDate, p.PreferredTime,
		skill.DurationMinutes, cost, s.clock.Now(),
	)
	if err != nil {
		return nil, markDomainErr(err)
	}

	// Advisory pre-check; not concurrency-safe, just a fast rejection.
	conflict, err := s.uow.CommandReads().HasSlotConflict(ctx, b.ProviderID(), b.Window(), s.cfg.BufferMinutes, nil)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if conflict {
		return nil, errs.ErrSlotConflict
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Serializes concurrent creations for this provider so the recount
		// below cannot race against another in-flight insert.
		if _, lockErr := tx.Wallets().FindForUpdate(ctx, tx.DB(), b.ProviderID()); lockErr != nil {
			if infra.IsKind(lockErr, infra.KindNotFound) {
				return errs.Mark(lockErr, errs.ErrUserNotFound)
			}
			return errs.Mark(lockErr, errs.ErrDatabaseOperationFailed)
		}

		if conflictErr := s.recountConflicts(ctx, tx, b.ProviderID(), b.Window(), nil); conflictErr != nil {
			return conflictErr
		}

		// The booking row must exist before the hold: the escrow row
		// references it by foreign key.
		if createErr := tx.Bookings().Create(ctx, tx.DB(), b); createErr != nil {
			return errs.Mark(createErr, errs.ErrDatabaseOperationFailed)
		}

		if _, holdErr := s.ledger.Hold(ctx, tx, b); holdErr != nil {
			return holdErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, b.ProviderID(), "booking_requested", map[string]any{
		"booking_id": b.ID(),
		"skill_id":   b.SkillID(),
		"start_at":   b.Window().Start(),
	})

	return s.bookingQueries.GetByIDSystem(ctx, b.ID())
}

func (s *bookingCommandsImpl) AcceptBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "booking_accepted",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			return markDomainErr(b.Accept(actorID, s.clock.Now()))
		})
}

// DeclineBooking rejects a pending request and refunds the escrow in the
// same transaction.
func (s *bookingCommandsImpl) DeclineBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "booking_declined",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			if err := b.Decline(actorID, reason, s.clock.Now()); err != nil {
				return markDomainErr(err)
			}
			_, err := s.ledger.Refund(ctx, tx, b.ID())
			return err
		})
}

// CancelBooking withdraws a booking before the cutoff and refunds the escrow.
func (s *bookingCommandsImpl) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "booking_cancelled",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			if err := b.Cancel(actorID, reason, s.cancelCutoff(), s.clock.Now()); err != nil {
				return markDomainErr(err)
			}
			_, err := s.ledger.Refund(ctx, tx, b.ID())
			return err
		})
}

// CompleteSession marks a held session as completed and releases the escrow
// to the provider.
func (s *bookingCommandsImpl) CompleteSession(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "session_completed",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			if err := b.Complete(actorID, s.clock.Now()); err != nil {
				return markDomainErr(err)
			}
			_, err := s.ledger.Release(ctx, tx, b.ID())
			return err
		})
}

// RequestReschedule proposes a new slot; funds stay held, the cost is fixed.
func (s *bookingCommandsImpl) RequestReschedule(ctx context.Context, actorID, bookingID uuid.UUID, newDate time.Time, newTime, reason string) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "reschedule_requested",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			return markDomainErr(b.RequestReschedule(actorID, newDate, newTime, reason, s.clock.Now()))
		})
}

// AcceptReschedule re-runs the conflict check against the proposed window
// (excluding the booking itself) before the new slot takes effect.
func (s *bookingCommandsImpl) AcceptReschedule(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "reschedule_accepted",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			if err := b.AcceptReschedule(actorID, s.clock.Now()); err != nil {
				return markDomainErr(err)
			}

			if _, lockErr := tx.Wallets().FindForUpdate(ctx, tx.DB(), b.ProviderID()); lockErr != nil {
				if infra.IsKind(lockErr, infra.KindNotFound) {
					return errs.Mark(lockErr, errs.ErrUserNotFound)
				}
				return errs.Mark(lockErr, errs.ErrDatabaseOperationFailed)
			}
			id := b.ID()
			return s.recountConflicts(ctx, tx, b.ProviderID(), b.Window(), &id)
		})
}

func (s *bookingCommandsImpl) DeclineReschedule(ctx context.Context, actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return s.transition(ctx, bookingID, "reschedule_declined",
		func(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
			return markDomainErr(b.DeclineReschedule(actorID, s.clock.Now()))
		})
}

// transition loads the booking under a row lock, applies the mutation and
// persists the result in one transaction, then notifies both parties.
func (s *bookingCommandsImpl) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	topic string,
	mutate func(ctx context.Context, tx shared.Tx, b *booking.Booking) error,
) (*queries.BookingView, error) {
	var providerID, learnerID uuid.UUID

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, findErr := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return errs.Mark(findErr, errs.ErrBookingNotFound)
			}
			return errs.Mark(findErr, errs.ErrDatabaseOperationFailed)
		}

		if mutateErr := mutate(ctx, tx, b); mutateErr != nil {
			return mutateErr
		}

		if updateErr := tx.Bookings().Update(ctx, tx.DB(), b); updateErr != nil {
			return errs.Mark(updateErr, errs.ErrDatabaseOperationFailed)
		}

		providerID, learnerID = b.ProviderID(), b.LearnerID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"booking_id": bookingID}
	s.notifier.Notify(ctx, providerID, topic, payload)
	s.notifier.Notify(ctx, learnerID, topic, payload)

	return s.bookingQueries.GetByIDSystem(ctx, bookingID)
}

func (s *bookingCommandsImpl) recountConflicts(ctx context.Context, tx shared.Tx, providerID uuid.UUID, window booking.SessionWindow, excludeID *uuid.UUID) error {
	expanded := window.WithBuffer(s.cfg.BufferMinutes)
	count, err := tx.Bookings().CountOverlapping(ctx, tx.DB(), providerID, expanded.Start(), expanded.End(), excludeID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if count > 0 {
		return errs.ErrSlotConflict
	}
	return nil
}

// markDomainErr translates booking aggregate errors to shared sentinels so
// handlers can map them without importing the domain package.
func markDomainErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, booking.ErrNotProvider),
		errors.Is(err, booking.ErrNotParticipant),
		errors.Is(err, booking.ErrNotCounterparty):
		return errs.Mark(err, errs.ErrNotAuthorizedParty)
	case errors.Is(err, booking.ErrCancelCutoffPassed):
		return errs.Mark(err, errs.ErrCancelCutoffPassed)
	case errors.Is(err, booking.ErrSessionNotEnded):
		return errs.Mark(err, errs.ErrSessionNotEnded)
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrNoRescheduleRequest),
		errors.Is(err, booking.ErrInvalidStatus):
		return errs.Mark(err, errs.ErrInvalidTransition)
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}
}
