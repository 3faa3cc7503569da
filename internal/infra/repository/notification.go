package repository

import (
	"context"
	"time"

	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// NotificationRepository persists outbound notification jobs for a worker to
// pick up; delivery never participates in the booking transaction.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const insertNotificationJobSQL = `
INSERT INTO notification_jobs (id, kind, topic, payload, status, run_at, created_at)
VALUES ($1, $2, $3, $4, 'pending', $5, now())`

func (r *NotificationRepository) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := dbtx.Exec(ctx, insertNotificationJobSQL,
		pgconv.UUIDToPgtype(uuid.New()),
		pgconv.StringToPgtype(kind),
		pgconv.StringToPgtype(topic),
		payload,
		pgconv.TimeToPgtype(runAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
