package readstore

import (
	"context"

	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/pgconv"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type SkillReadStore struct {
	db db.DBTX
}

func NewSkillReadStore(dbtx db.DBTX) *SkillReadStore {
	return &SkillReadStore{db: dbtx}
}

const selectSkillByIDSQL = `
SELECT id, provider_id, name, duration_minutes, session_cost, is_active
FROM skills
WHERE id = $1`

func (r *SkillReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.SkillSnapshot, error) {
	var (
		skillID, providerID pgtype.UUID
		name                pgtype.Text
		durationMinutes     int32
		snapshot            shared.SkillSnapshot
	)
	err := r.db.QueryRow(ctx, selectSkillByIDSQL, pgconv.UUIDToPgtype(id)).Scan(
		&skillID, &providerID, &name, &durationMinutes,
		&snapshot.SessionCost, &snapshot.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("skill not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find skill by ID", err)
	}

	snapshot.ID = uuid.UUID(skillID.Bytes)
	snapshot.ProviderID = uuid.UUID(providerID.Bytes)
	snapshot.Name = name.String
	snapshot.DurationMinutes = int(durationMinutes)
	return &snapshot, nil
}
