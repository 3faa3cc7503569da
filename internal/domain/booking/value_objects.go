package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeOfDay = errors.New("time of day must be in HH:MM format")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrNegativeCredits  = errors.New("credits cannot be negative")
)

const timeOfDayLayout = "15:04"

// SessionWindow is the absolute [start, end) interval a session occupies.
type SessionWindow struct {
	start time.Time
	end   time.Time
}

// NewSessionWindow derives the window from a calendar date, a local "HH:MM"
// time-of-day string and a duration in minutes. The date's location is kept.
func NewSessionWindow(date time.Time, timeOfDay string, durationMinutes int) (SessionWindow, error) {
	if durationMinutes <= 0 {
		return SessionWindow{}, ErrInvalidDuration
	}

	tod, err := time.Parse(timeOfDayLayout, timeOfDay)
	if err != nil {
		return SessionWindow{}, ErrInvalidTimeOfDay
	}

	start := time.Date(
		date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), 0, 0,
		date.Location(),
	)
	return SessionWindow{
		start: start,
		end:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}, nil
}

func ReconstructSessionWindow(start, end time.Time) SessionWindow {
	return SessionWindow{start: start, end: end}
}

func (w SessionWindow) Start() time.Time        { return w.start }
func (w SessionWindow) End() time.Time          { return w.end }
func (w SessionWindow) Duration() time.Duration { return w.end.Sub(w.start) }

// WithBuffer expands the window by the buffer on both sides. The buffer is
// applied to the candidate only; existing windows are compared as stored.
func (w SessionWindow) WithBuffer(bufferMinutes int) SessionWindow {
	if bufferMinutes <= 0 {
		return w
	}
	buffer := time.Duration(bufferMinutes) * time.Minute
	return SessionWindow{start: w.start.Add(-buffer), end: w.end.Add(buffer)}
}

// Overlaps reports whether two half-open intervals intersect.
func (w SessionWindow) Overlaps(other SessionWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}

// Credits is the internal currency unit; always a whole, non-negative amount.
type Credits struct {
	amount int64
}

func NewCredits(amount int64) (Credits, error) {
	if amount < 0 {
		return Credits{}, ErrNegativeCredits
	}
	return Credits{amount: amount}, nil
}

func (c Credits) Amount() int64 {
	return c.amount
}

// RescheduleInfo carries a proposed new slot while a reschedule is pending.
// Present on the aggregate only in StatusRescheduleRequested.
type RescheduleInfo struct {
	NewDate     time.Time
	NewTime     string
	Reason      string
	RequestedBy uuid.UUID
	RequestedAt time.Time
}
