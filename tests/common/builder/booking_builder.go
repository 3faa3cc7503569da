//go:build unit || e2e

package builder

import (
	"time"

	dombooking "skillmarket/internal/domain/booking"
	reqdto "skillmarket/internal/handler/dto/request"
	"skillmarket/internal/usecase/queries"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ProviderID      uuid.UUID
	ProviderEmail   string
	LearnerID       uuid.UUID
	LearnerEmail    string
	SkillID         uuid.UUID
	SkillName       string
	PreferredDate   time.Time
	PreferredTime   string
	DurationMinutes int
	SessionCost     int64
	Now             time.Time
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		ProviderID:      uuid.New(),
		ProviderEmail:   "provider@example.com",
		LearnerID:       uuid.New(),
		LearnerEmail:    "learner@example.com",
		SkillID:         uuid.New(),
		SkillName:       "Go Programming",
		PreferredDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PreferredTime:   "10:00",
		DurationMinutes: 60,
		SessionCost:     40,
		Now:             time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	cost, err := dombooking.NewCredits(b.SessionCost)
	if err != nil {
		return nil, err
	}
	return dombooking.NewBooking(
		b.ProviderID, b.LearnerID, b.SkillID,
		b.PreferredDate, b.PreferredTime, b.DurationMinutes, cost, b.Now,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		SkillID:       b.SkillID,
		PreferredDate: b.PreferredDate,
		PreferredTime: b.PreferredTime,
	}
}

func (b *BookingBuilder) BuildSkillSnapshot() *shared.SkillSnapshot {
	return &shared.SkillSnapshot{
		ID:              b.SkillID,
		ProviderID:      b.ProviderID,
		Name:            b.SkillName,
		DurationMinutes: b.DurationMinutes,
		SessionCost:     b.SessionCost,
		IsActive:        true,
	}
}

func (b *BookingBuilder) BuildViewQuery() *queries.BookingView {
	id := uuid.New()
	start := time.Date(
		b.PreferredDate.Year(), b.PreferredDate.Month(), b.PreferredDate.Day(),
		10, 0, 0, 0, time.UTC,
	)
	return &queries.BookingView{
		ID:              id,
		SkillID:         b.SkillID,
		SkillName:       b.SkillName,
		ProviderID:      b.ProviderID,
		ProviderEmail:   b.ProviderEmail,
		LearnerID:       b.LearnerID,
		LearnerEmail:    b.LearnerEmail,
		PreferredDate:   b.PreferredDate,
		PreferredTime:   b.PreferredTime,
		DurationMinutes: b.DurationMinutes,
		StartAt:         start,
		EndAt:           start.Add(time.Duration(b.DurationMinutes) * time.Minute),
		SessionCost:     b.SessionCost,
		Status:          dombooking.StatusPending.String(),
		CreatedAt:       b.Now,
		UpdatedAt:       b.Now,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	view := b.BuildViewQuery()
	return &queries.BookingListItem{
		ID:          view.ID,
		SkillID:     view.SkillID,
		SkillName:   view.SkillName,
		ProviderID:  view.ProviderID,
		LearnerID:   view.LearnerID,
		StartAt:     view.StartAt,
		EndAt:       view.EndAt,
		SessionCost: view.SessionCost,
		Status:      view.Status,
		CreatedAt:   view.CreatedAt,
	}
}

func (b *BookingBuilder) BuildWallet(credits int64) *shared.WalletSnapshot {
	return &shared.WalletSnapshot{
		UserID:  b.LearnerID,
		Credits: credits,
	}
}
