package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus       = errors.New("invalid booking status")
	ErrInvalidTransition   = errors.New("transition not allowed from current status")
	ErrNotProvider         = errors.New("only the assigned provider may perform this action")
	ErrNotParticipant      = errors.New("only a booking participant may perform this action")
	ErrNotCounterparty     = errors.New("only the counterparty of the reschedule request may respond")
	ErrCancelCutoffPassed  = errors.New("cancellation window has closed")
	ErrSessionNotEnded     = errors.New("session has not ended yet")
	ErrNoRescheduleRequest = errors.New("no reschedule request pending")
	ErrSelfBooking         = errors.New("provider cannot book their own session")
)

// Booking is the aggregate for one session request/agreement between a
// learner and a provider. sessionCost is fixed at creation and never changes,
// including across reschedules.
type Booking struct {
	id              uuid.UUID
	providerID      uuid.UUID
	learnerID       uuid.UUID
	skillID         uuid.UUID
	durationMinutes int
	preferredDate   time.Time
	preferredTime   string
	window          SessionWindow
	sessionCost     Credits
	status          Status
	reschedule      *RescheduleInfo
	rejectionReason *string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewBooking(
	providerID, learnerID, skillID uuid.UUID,
	preferredDate time.Time,
	preferredTime string,
	durationMinutes int,
	sessionCost Credits,
	now time.Time,
) (*Booking, error) {
	if providerID == learnerID {
		return nil, ErrSelfBooking
	}

	window, err := NewSessionWindow(preferredDate, preferredTime, durationMinutes)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:              uuid.New(),
		providerID:      providerID,
		learnerID:       learnerID,
		skillID:         skillID,
		durationMinutes: durationMinutes,
		preferredDate:   preferredDate,
		preferredTime:   preferredTime,
		window:          window,
		sessionCost:     sessionCost,
		status:          StatusPending,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructBooking(
	id, providerID, learnerID, skillID uuid.UUID,
	preferredDate time.Time,
	preferredTime string,
	durationMinutes int,
	window SessionWindow,
	sessionCost Credits,
	status Status,
	reschedule *RescheduleInfo,
	rejectionReason *string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		providerID:      providerID,
		learnerID:       learnerID,
		skillID:         skillID,
		durationMinutes: durationMinutes,
		preferredDate:   preferredDate,
		preferredTime:   preferredTime,
		window:          window,
		sessionCost:     sessionCost,
		status:          status,
		reschedule:      reschedule,
		rejectionReason: rejectionReason,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Accept confirms a pending booking. Provider only. A booking with an open
// reschedule request must be answered through AcceptReschedule instead.
func (b *Booking) Accept(actor uuid.UUID, now time.Time) error {
	if actor != b.providerID {
		return ErrNotProvider
	}
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	return b.transitionTo(StatusConfirmed, now)
}

// Decline rejects a pending booking. Provider only; the caller is expected to
// refund the escrow in the same transaction.
func (b *Booking) Decline(actor uuid.UUID, reason string, now time.Time) error {
	if actor != b.providerID {
		return ErrNotProvider
	}
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	if err := b.transitionTo(StatusDeclined, now); err != nil {
		return err
	}
	if reason != "" {
		b.rejectionReason = &reason
	}
	return nil
}

// Cancel withdraws a non-terminal booking before the cutoff. Either party may
// cancel; past startAt minus the cutoff the request is rejected.
func (b *Booking) Cancel(actor uuid.UUID, reason string, cutoff time.Duration, now time.Time) error {
	if !b.isParticipant(actor) {
		return ErrNotParticipant
	}
	if !b.status.canTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	if !now.Before(b.window.Start().Add(-cutoff)) {
		return ErrCancelCutoffPassed
	}
	if err := b.transitionTo(StatusCancelled, now); err != nil {
		return err
	}
	b.reschedule = nil
	if reason != "" {
		b.rejectionReason = &reason
	}
	return nil
}

// Complete marks a confirmed session as held once its end time has passed.
// Either party or the system (uuid.Nil actor) may complete.
func (b *Booking) Complete(actor uuid.UUID, now time.Time) error {
	if actor != uuid.Nil && !b.isParticipant(actor) {
		return ErrNotParticipant
	}
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if now.Before(b.window.End()) {
		return ErrSessionNotEnded
	}
	return b.transitionTo(StatusCompleted, now)
}

// RequestReschedule proposes a new slot for a confirmed booking. Funds are
// untouched; the cost is fixed.
func (b *Booking) RequestReschedule(actor uuid.UUID, newDate time.Time, newTime, reason string, now time.Time) error {
	if !b.isParticipant(actor) {
		return ErrNotParticipant
	}
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	// Validate the proposed slot parses before accepting the request.
	if _, err := NewSessionWindow(newDate, newTime, b.durationMinutes); err != nil {
		return err
	}
	if err := b.transitionTo(StatusRescheduleRequested, now); err != nil {
		return err
	}
	b.reschedule = &RescheduleInfo{
		NewDate:     newDate,
		NewTime:     newTime,
		Reason:      reason,
		RequestedBy: actor,
		RequestedAt: now,
	}
	return nil
}

// ProposedWindow derives the window of the pending reschedule request.
// Callers re-run the conflict check against it before AcceptReschedule.
func (b *Booking) ProposedWindow() (SessionWindow, error) {
	if b.reschedule == nil {
		return SessionWindow{}, ErrNoRescheduleRequest
	}
	return NewSessionWindow(b.reschedule.NewDate, b.reschedule.NewTime, b.durationMinutes)
}

// AcceptReschedule applies the proposed slot and returns to CONFIRMED.
// Only the counterparty of the requester may accept.
func (b *Booking) AcceptReschedule(actor uuid.UUID, now time.Time) error {
	if err := b.guardRescheduleResponse(actor); err != nil {
		return err
	}
	window, err := b.ProposedWindow()
	if err != nil {
		return err
	}
	if err := b.transitionTo(StatusConfirmed, now); err != nil {
		return err
	}
	b.preferredDate = b.reschedule.NewDate
	b.preferredTime = b.reschedule.NewTime
	b.window = window
	b.reschedule = nil
	return nil
}

// DeclineReschedule discards the proposal and keeps the original slot.
func (b *Booking) DeclineReschedule(actor uuid.UUID, now time.Time) error {
	if err := b.guardRescheduleResponse(actor); err != nil {
		return err
	}
	if err := b.transitionTo(StatusConfirmed, now); err != nil {
		return err
	}
	b.reschedule = nil
	return nil
}

func (b *Booking) guardRescheduleResponse(actor uuid.UUID) error {
	if !b.isParticipant(actor) {
		return ErrNotParticipant
	}
	if b.status != StatusRescheduleRequested || b.reschedule == nil {
		return ErrInvalidTransition
	}
	if actor == b.reschedule.RequestedBy {
		return ErrNotCounterparty
	}
	return nil
}

func (b *Booking) transitionTo(next Status, now time.Time) error {
	if !b.status.canTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.status = next
	b.updatedAt = now
	return nil
}

func (b *Booking) isParticipant(actor uuid.UUID) bool {
	return actor == b.providerID || actor == b.learnerID
}

func (b *Booking) ID() uuid.UUID               { return b.id }
func (b *Booking) ProviderID() uuid.UUID       { return b.providerID }
func (b *Booking) LearnerID() uuid.UUID        { return b.learnerID }
func (b *Booking) SkillID() uuid.UUID          { return b.skillID }
func (b *Booking) DurationMinutes() int        { return b.durationMinutes }
func (b *Booking) PreferredDate() time.Time    { return b.preferredDate }
func (b *Booking) PreferredTime() string       { return b.preferredTime }
func (b *Booking) Window() SessionWindow       { return b.window }
func (b *Booking) SessionCost() Credits        { return b.sessionCost }
func (b *Booking) Status() Status              { return b.status }
func (b *Booking) Reschedule() *RescheduleInfo { return b.reschedule }
func (b *Booking) RejectionReason() *string    { return b.rejectionReason }
func (b *Booking) CreatedAt() time.Time        { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time        { return b.updatedAt }
