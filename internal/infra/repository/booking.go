package repository

import (
	"context"
	"time"

	"skillmarket/internal/domain/booking"
	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const insertBookingSQL = `
INSERT INTO bookings (
    id, provider_id, learner_id, skill_id,
    preferred_date, preferred_time, duration_minutes,
    start_at, end_at, session_cost, status,
    reschedule_new_date, reschedule_new_time, reschedule_reason,
    reschedule_requested_by, reschedule_requested_at,
    rejection_reason, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
    $12, $13, $14, $15, $16, $17, $18, $19
)`

func (r *BookingRepository) Create(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error {
	row := bookingToRow(b)

	_, err := dbtx.Exec(ctx, insertBookingSQL,
		row.ID, row.ProviderID, row.LearnerID, row.SkillID,
		row.PreferredDate, row.PreferredTime, row.DurationMinutes,
		row.StartAt, row.EndAt, row.SessionCost, row.Status,
		row.RescheduleNewDate, row.RescheduleNewTime, row.RescheduleReason,
		row.RescheduleRequestedBy, row.RescheduleRequestedAt,
		row.RejectionReason, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

const selectBookingForUpdateSQL = `
SELECT id, provider_id, learner_id, skill_id,
       preferred_date, preferred_time, duration_minutes,
       start_at, end_at, session_cost, status,
       reschedule_new_date, reschedule_new_time, reschedule_reason,
       reschedule_requested_by, reschedule_requested_at,
       rejection_reason, created_at, updated_at
FROM bookings
WHERE id = $1
FOR UPDATE`

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	var row bookingRow
	err := dbtx.QueryRow(ctx, selectBookingForUpdateSQL, pgconv.UUIDToPgtype(id)).Scan(
		&row.ID, &row.ProviderID, &row.LearnerID, &row.SkillID,
		&row.PreferredDate, &row.PreferredTime, &row.DurationMinutes,
		&row.StartAt, &row.EndAt, &row.SessionCost, &row.Status,
		&row.RescheduleNewDate, &row.RescheduleNewTime, &row.RescheduleReason,
		&row.RescheduleRequestedBy, &row.RescheduleRequestedAt,
		&row.RejectionReason, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking for update", err)
	}

	return rowToBooking(row)
}

const updateBookingSQL = `
UPDATE bookings
SET preferred_date = $2,
    preferred_time = $3,
    start_at = $4,
    end_at = $5,
    status = $6,
    reschedule_new_date = $7,
    reschedule_new_time = $8,
    reschedule_reason = $9,
    reschedule_requested_by = $10,
    reschedule_requested_at = $11,
    rejection_reason = $12,
    updated_at = $13
WHERE id = $1`

func (r *BookingRepository) Update(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error {
	row := bookingToRow(b)

	tag, err := dbtx.Exec(ctx, updateBookingSQL,
		row.ID,
		row.PreferredDate, row.PreferredTime,
		row.StartAt, row.EndAt, row.Status,
		row.RescheduleNewDate, row.RescheduleNewTime, row.RescheduleReason,
		row.RescheduleRequestedBy, row.RescheduleRequestedAt,
		row.RejectionReason, row.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// Slot-blocking statuses only; half-open interval intersection.
const countOverlappingSQL = `
SELECT COUNT(*)
FROM bookings
WHERE provider_id = $1
  AND status IN ('pending', 'confirmed')
  AND start_at < $3
  AND end_at > $2
  AND ($4::uuid IS NULL OR id <> $4)`

func (r *BookingRepository) CountOverlapping(ctx context.Context, dbtx db.DBTX, providerID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int64, error) {
	var count int64
	err := dbtx.QueryRow(ctx, countOverlappingSQL,
		pgconv.UUIDToPgtype(providerID),
		pgconv.TimeToPgtype(start),
		pgconv.TimeToPgtype(end),
		pgconv.UUIDPtrToPgtype(excludeBookingID),
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count overlapping bookings", err)
	}
	return count, nil
}

type bookingRow struct {
	ID                    pgtype.UUID
	ProviderID            pgtype.UUID
	LearnerID             pgtype.UUID
	SkillID               pgtype.UUID
	PreferredDate         pgtype.Date
	PreferredTime         pgtype.Text
	DurationMinutes       int32
	StartAt               pgtype.Timestamptz
	EndAt                 pgtype.Timestamptz
	SessionCost           int64
	Status                pgtype.Text
	RescheduleNewDate     pgtype.Date
	RescheduleNewTime     pgtype.Text
	RescheduleReason      pgtype.Text
	RescheduleRequestedBy pgtype.UUID
	RescheduleRequestedAt pgtype.Timestamptz
	RejectionReason       pgtype.Text
	CreatedAt             pgtype.Timestamptz
	UpdatedAt             pgtype.Timestamptz
}

func bookingToRow(b *booking.Booking) bookingRow {
	row := bookingRow{
		ID:              pgconv.UUIDToPgtype(b.ID()),
		ProviderID:      pgconv.UUIDToPgtype(b.ProviderID()),
		LearnerID:       pgconv.UUIDToPgtype(b.LearnerID()),
		SkillID:         pgconv.UUIDToPgtype(b.SkillID()),
		PreferredDate:   pgconv.DateToPgtype(b.PreferredDate()),
		PreferredTime:   pgconv.StringToPgtype(b.PreferredTime()),
		DurationMinutes: int32(b.DurationMinutes()),
		StartAt:         pgconv.TimeToPgtype(b.Window().Start()),
		EndAt:           pgconv.TimeToPgtype(b.Window().End()),
		SessionCost:     b.SessionCost().Amount(),
		Status:          pgconv.StringToPgtype(b.Status().String()),
		RejectionReason: pgconv.StringPtrToPgtype(b.RejectionReason()),
		CreatedAt:       pgconv.TimeToPgtype(b.CreatedAt()),
		UpdatedAt:       pgconv.TimeToPgtype(b.UpdatedAt()),
	}

	if resched := b.Reschedule(); resched != nil {
		row.RescheduleNewDate = pgconv.DateToPgtype(resched.NewDate)
		row.RescheduleNewTime = pgconv.StringToPgtype(resched.NewTime)
		if resched.Reason != "" {
			row.RescheduleReason = pgconv.StringToPgtype(resched.Reason)
		}
		row.RescheduleRequestedBy = pgconv.UUIDToPgtype(resched.RequestedBy)
		row.RescheduleRequestedAt = pgconv.TimeToPgtype(resched.RequestedAt)
	}
	return row
}

func rowToBooking(row bookingRow) (*booking.Booking, error) {
	status, err := booking.NewStatus(row.Status.String)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking status", err)
	}

	cost, err := booking.NewCredits(row.SessionCost)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking session cost", err)
	}

	var resched *booking.RescheduleInfo
	if row.RescheduleNewTime.Valid {
		reason := ""
		if row.RescheduleReason.Valid {
			reason = row.RescheduleReason.String
		}
		resched = &booking.RescheduleInfo{
			NewDate:     pgconv.DateFromPgtype(row.RescheduleNewDate),
			NewTime:     row.RescheduleNewTime.String,
			Reason:      reason,
			RequestedBy: uuid.UUID(row.RescheduleRequestedBy.Bytes),
			RequestedAt: pgconv.TimeFromPgtype(row.RescheduleRequestedAt),
		}
	}

	return booking.ReconstructBooking(
		uuid.UUID(row.ID.Bytes),
		uuid.UUID(row.ProviderID.Bytes),
		uuid.UUID(row.LearnerID.Bytes),
		uuid.UUID(row.SkillID.Bytes),
		pgconv.DateFromPgtype(row.PreferredDate),
		row.PreferredTime.String,
		int(row.DurationMinutes),
		booking.ReconstructSessionWindow(
			pgconv.TimeFromPgtype(row.StartAt),
			pgconv.TimeFromPgtype(row.EndAt),
		),
		cost,
		status,
		resched,
		pgconv.StringPtrFromPgtype(row.RejectionReason),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}
