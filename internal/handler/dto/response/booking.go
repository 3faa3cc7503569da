package response

import (
	"time"

	"skillmarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID              uuid.UUID           `json:"id"`
	SkillID         uuid.UUID           `json:"skillId"`
	SkillName       string              `json:"skillName"`
	ProviderID      uuid.UUID           `json:"providerId"`
	ProviderEmail   string              `json:"providerEmail"`
	LearnerID       uuid.UUID           `json:"learnerId"`
	LearnerEmail    string              `json:"learnerEmail"`
	PreferredDate   time.Time           `json:"preferredDate"`
	PreferredTime   string              `json:"preferredTime"`
	DurationMinutes int                 `json:"durationMinutes"`
	StartAt         time.Time           `json:"startAt"`
	EndAt           time.Time           `json:"endAt"`
	SessionCost     int64               `json:"sessionCost"`
	Status          string              `json:"status"`
	Reschedule      *RescheduleResponse `json:"reschedule,omitempty"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type RescheduleResponse struct {
	NewDate     time.Time `json:"newDate"`
	NewTime     string    `json:"newTime"`
	Reason      string    `json:"reason,omitempty"`
	RequestedBy uuid.UUID `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}

type BookingListResponse struct {
	ID          uuid.UUID `json:"id"`
	SkillID     uuid.UUID `json:"skillId"`
	SkillName   string    `json:"skillName"`
	ProviderID  uuid.UUID `json:"providerId"`
	LearnerID   uuid.UUID `json:"learnerId"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	SessionCost int64     `json:"sessionCost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}

func FromBookingListItem(rm *queries.BookingListItem) *BookingListResponse {
	var resp BookingListResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}
