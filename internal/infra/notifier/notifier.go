package notifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"skillmarket/internal/infra/repository"
	"skillmarket/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobKind = "user_notification"

// JobNotifier enqueues notification jobs for an out-of-band worker. It runs
// outside the booking transaction on purpose: a failed enqueue is logged and
// the committed operation stands.
type JobNotifier struct {
	pool  *pgxpool.Pool
	repo  *repository.NotificationRepository
	clock clock.Clock
}

func NewJobNotifier(pool *pgxpool.Pool, clock clock.Clock) *JobNotifier {
	return &JobNotifier{
		pool:  pool,
		repo:  repository.NewNotificationRepository(),
		clock: clock,
	}
}

func (n *JobNotifier) Notify(ctx context.Context, recipient uuid.UUID, topic string, payload map[string]any) {
	body := map[string]any{"recipient": recipient}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		slog.Warn("failed to marshal notification payload", "topic", topic, "error", err.Error())
		return
	}

	if err := n.repo.CreateJob(ctx, n.pool, jobKind, topic, data, n.clock.Now()); err != nil {
		slog.Warn("failed to enqueue notification job",
			"recipient", recipient,
			"topic", topic,
			"error", err.Error())
	}
}
