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

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

const selectUserByIDSQL = `
SELECT id, email, display_name, role, credits, held_credits, earned_credits, is_active
FROM users
WHERE id = $1`

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var row userViewRow
	err := r.db.QueryRow(ctx, selectUserByIDSQL, pgconv.UUIDToPgtype(id)).Scan(
		&row.ID, &row.Email, &row.DisplayName, &row.Role,
		&row.Credits, &row.HeldCredits, &row.EarnedCredits, &row.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	return rowToUserView(row), nil
}

const selectUserByEmailSQL = `
SELECT id, email, display_name, role, credits, held_credits, earned_credits, is_active, password_hash
FROM users
WHERE email = $1`

func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	var (
		row          userViewRow
		passwordHash pgtype.Text
	)
	err := r.db.QueryRow(ctx, selectUserByEmailSQL, pgconv.StringToPgtype(email)).Scan(
		&row.ID, &row.Email, &row.DisplayName, &row.Role,
		&row.Credits, &row.HeldCredits, &row.EarnedCredits, &row.IsActive,
		&passwordHash,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}

	return rowToUserView(row), passwordHash.String, nil
}

type userViewRow struct {
	ID            pgtype.UUID
	Email         pgtype.Text
	DisplayName   pgtype.Text
	Role          pgtype.Text
	Credits       int64
	HeldCredits   int64
	EarnedCredits int64
	IsActive      bool
}

func rowToUserView(row userViewRow) *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:            uuid.UUID(row.ID.Bytes),
		Email:         row.Email.String,
		DisplayName:   row.DisplayName.String,
		Role:          row.Role.String,
		Credits:       row.Credits,
		HeldCredits:   row.HeldCredits,
		EarnedCredits: row.EarnedCredits,
		IsActive:      row.IsActive,
	}
}
