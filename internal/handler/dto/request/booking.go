package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	SkillID       uuid.UUID `json:"skill_id" binding:"required"`
	PreferredDate time.Time `json:"preferred_date" binding:"required"`
	PreferredTime string    `json:"preferred_time" binding:"required"`
}

type DeclineBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RequestRescheduleRequest struct {
	NewDate time.Time `json:"new_date" binding:"required"`
	NewTime string    `json:"new_time" binding:"required"`
	Reason  string    `json:"reason,omitempty"`
}

func (r RequestRescheduleRequest) TrimmedReason() string {
	return strings.TrimSpace(r.Reason)
}
