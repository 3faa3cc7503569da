package readstore

import (
	"context"

	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"
	"skillmarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

const selectBookingViewSQL = `
SELECT b.id, b.skill_id, s.name AS skill_name,
       b.provider_id, p.email AS provider_email,
       b.learner_id, l.email AS learner_email,
       b.preferred_date, b.preferred_time, b.duration_minutes,
       b.start_at, b.end_at, b.session_cost, b.status,
       b.reschedule_new_date, b.reschedule_new_time, b.reschedule_reason,
       b.reschedule_requested_by, b.reschedule_requested_at,
       b.rejection_reason, b.created_at, b.updated_at
FROM bookings b
JOIN skills s ON s.id = b.skill_id
JOIN users p ON p.id = b.provider_id
JOIN users l ON l.id = b.learner_id
WHERE b.id = $1`

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var row bookingViewRow
	err := r.db.QueryRow(ctx, selectBookingViewSQL, pgconv.UUIDToPgtype(id)).Scan(
		&row.ID, &row.SkillID, &row.SkillName,
		&row.ProviderID, &row.ProviderEmail,
		&row.LearnerID, &row.LearnerEmail,
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
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	return rowToBookingView(row), nil
}

const selectBookingsByParticipantSQL = `
SELECT b.id, b.skill_id, s.name AS skill_name,
       b.provider_id, b.learner_id,
       b.start_at, b.end_at, b.session_cost, b.status, b.created_at
FROM bookings b
JOIN skills s ON s.id = b.skill_id
WHERE b.provider_id = $1 OR b.learner_id = $1
ORDER BY b.start_at DESC, b.id DESC
LIMIT $2`

func (r *BookingReadStore) FindByParticipant(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, selectBookingsByParticipantSQL, pgconv.UUIDToPgtype(userID), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings by participant", err)
	}
	defer rows.Close()

	result := make([]*queries.BookingListItem, 0)
	for rows.Next() {
		var (
			id, skillID, providerID, learnerID pgtype.UUID
			skillName, status                  pgtype.Text
			startAt, endAt, createdAt          pgtype.Timestamptz
			sessionCost                        int64
		)
		if err := rows.Scan(&id, &skillID, &skillName, &providerID, &learnerID,
			&startAt, &endAt, &sessionCost, &status, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list row", err)
		}
		result = append(result, &queries.BookingListItem{
			ID:          uuid.UUID(id.Bytes),
			SkillID:     uuid.UUID(skillID.Bytes),
			SkillName:   skillName.String,
			ProviderID:  uuid.UUID(providerID.Bytes),
			LearnerID:   uuid.UUID(learnerID.Bytes),
			StartAt:     pgconv.TimeFromPgtype(startAt),
			EndAt:       pgconv.TimeFromPgtype(endAt),
			SessionCost: sessionCost,
			Status:      status.String,
			CreatedAt:   pgconv.TimeFromPgtype(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking list rows", err)
	}

	return result, nil
}

type bookingViewRow struct {
	ID                    pgtype.UUID
	SkillID               pgtype.UUID
	SkillName             pgtype.Text
	ProviderID            pgtype.UUID
	ProviderEmail         pgtype.Text
	LearnerID             pgtype.UUID
	LearnerEmail          pgtype.Text
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

func rowToBookingView(row bookingViewRow) *queries.BookingView {
	view := &queries.BookingView{
		ID:              uuid.UUID(row.ID.Bytes),
		SkillID:         uuid.UUID(row.SkillID.Bytes),
		SkillName:       row.SkillName.String,
		ProviderID:      uuid.UUID(row.ProviderID.Bytes),
		ProviderEmail:   row.ProviderEmail.String,
		LearnerID:       uuid.UUID(row.LearnerID.Bytes),
		LearnerEmail:    row.LearnerEmail.String,
		PreferredDate:   pgconv.DateFromPgtype(row.PreferredDate),
		PreferredTime:   row.PreferredTime.String,
		DurationMinutes: int(row.DurationMinutes),
		StartAt:         pgconv.TimeFromPgtype(row.StartAt),
		EndAt:           pgconv.TimeFromPgtype(row.EndAt),
		SessionCost:     row.SessionCost,
		Status:          row.Status.String,
		RejectionReason: pgconv.StringPtrFromPgtype(row.RejectionReason),
		CreatedAt:       pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:       pgconv.TimeFromPgtype(row.UpdatedAt),
	}

	if row.RescheduleNewTime.Valid {
		reason := ""
		if row.RescheduleReason.Valid {
			reason = row.RescheduleReason.String
		}
		view.Reschedule = &queries.RescheduleView{
			NewDate:     pgconv.DateFromPgtype(row.RescheduleNewDate),
			NewTime:     row.RescheduleNewTime.String,
			Reason:      reason,
			RequestedBy: uuid.UUID(row.RescheduleRequestedBy.Bytes),
			RequestedAt: pgconv.TimeFromPgtype(row.RescheduleRequestedAt),
		}
	}

	return view
}
