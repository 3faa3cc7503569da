package queries

import (
	"context"
	"time"

	"skillmarket/internal/infra"
	"skillmarket/internal/pkg/errs"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID              uuid.UUID       `json:"id"`
	SkillID         uuid.UUID       `json:"skill_id"`
	SkillName       string          `json:"skill_name"`
	ProviderID      uuid.UUID       `json:"provider_id"`
	ProviderEmail   string          `json:"provider_email"`
	LearnerID       uuid.UUID       `json:"learner_id"`
	LearnerEmail    string          `json:"learner_email"`
	PreferredDate   time.Time       `json:"preferred_date"`
	PreferredTime   string          `json:"preferred_time"`
	DurationMinutes int             `json:"duration_minutes"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           time.Time       `json:"end_at"`
	SessionCost     int64           `json:"session_cost"`
	Status          string          `json:"status"`
	Reschedule      *RescheduleView `json:"reschedule,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type RescheduleView struct {
	NewDate     time.Time `json:"new_date"`
	NewTime     string    `json:"new_time"`
	Reason      string    `json:"reason,omitempty"`
	RequestedBy uuid.UUID `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

type BookingListItem struct {
	ID          uuid.UUID `json:"id"`
	SkillID     uuid.UUID `json:"skill_id"`
	SkillName   string    `json:"skill_name"`
	ProviderID  uuid.UUID `json:"provider_id"`
	LearnerID   uuid.UUID `json:"learner_id"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	SessionCost int64     `json:"session_cost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingQueries interface {
	// GetByID enforces that the actor is a booking participant.
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error)
	// GetByIDSystem skips the participant check; used for read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingListItem, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByParticipant(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	readStore BookingReadStore
}

func NewBookingQueries(readStore BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{readStore: readStore}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.ProviderID != actor && view.LearnerID != actor {
		return nil, errs.ErrNotAuthorizedParty
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.readStore.FindByParticipant(ctx, userID, int32(limit))
}
