package commands

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers user-facing notifications after a transaction commits.
// Implementations are best-effort: a failed send is logged and never
// propagates back into the committed operation.
type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, topic string, payload map[string]any)
}
