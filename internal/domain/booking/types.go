package booking

// Status is the closed set of booking lifecycle states.
type Status string

const (
	StatusPending             Status = "pending"
	StatusConfirmed           Status = "confirmed"
	StatusRescheduleRequested Status = "reschedule_requested"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
	StatusDeclined            Status = "declined"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRescheduleRequested,
		StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	default:
		return false
	}
}

// BlocksSlot reports whether a booking in this status keeps the provider's
// time window reserved for conflict checks.
func (s Status) BlocksSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) canTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusDeclined || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusRescheduleRequested || next == StatusCancelled || next == StatusCompleted
	case StatusRescheduleRequested:
		return next == StatusConfirmed || next == StatusCancelled
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
