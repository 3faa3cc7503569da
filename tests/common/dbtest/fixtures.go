//go:build e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"skillmarket/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the plaintext behind every fixture user's hash.
const DefaultPassword = "password123"

var hashedDefaultPassword string

func defaultPasswordHash(t *testing.T) string {
	t.Helper()
	if hashedDefaultPassword == "" {
		hash, err := password.HashPassword(DefaultPassword)
		require.NoError(t, err, "Failed to hash fixture password")
		hashedDefaultPassword = hash
	}
	return hashedDefaultPassword
}

// CreateTestUser inserts a user with the given role and starting credits and
// returns its ID.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, email, role string, credits int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, display_name, role, credits, held_credits, earned_credits, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, true, now(), now())`,
		id, email, defaultPasswordHash(t), email, role, credits)
	require.NoError(t, err, "Failed to create test user")
	return id
}

// CreateTestSkill inserts an active skill offered by the given provider.
func CreateTestSkill(t *testing.T, pool *pgxpool.Pool, providerID uuid.UUID, name string, durationMinutes int, sessionCost int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO skills (id, provider_id, name, description, duration_minutes, session_cost, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, $5, true, now(), now())`,
		id, providerID, name, durationMinutes, sessionCost)
	require.NoError(t, err, "Failed to create test skill")
	return id
}

// Wallet is the balance triple read back for assertions.
type Wallet struct {
	Credits       int64
	HeldCredits   int64
	EarnedCredits int64
}

func GetWallet(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) Wallet {
	t.Helper()

	var w Wallet
	err := pool.QueryRow(context.Background(),
		`SELECT credits, held_credits, earned_credits FROM users WHERE id = $1`, userID).
		Scan(&w.Credits, &w.HeldCredits, &w.EarnedCredits)
	require.NoError(t, err, "Failed to read wallet")
	return w
}

func GetEscrowStatus(t *testing.T, pool *pgxpool.Pool, bookingID uuid.UUID) string {
	t.Helper()

	var status string
	err := pool.QueryRow(context.Background(),
		`SELECT status FROM escrow_transactions WHERE booking_id = $1`, bookingID).
		Scan(&status)
	require.NoError(t, err, "Failed to read escrow status")
	return status
}

func CountBookings(t *testing.T, pool *pgxpool.Pool, providerID uuid.UUID) int64 {
	t.Helper()

	var count int64
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM bookings WHERE provider_id = $1`, providerID).
		Scan(&count)
	require.NoError(t, err, "Failed to count bookings")
	return count
}

// ResetDB truncates all mutable tables between subtests.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		`TRUNCATE notification_jobs, escrow_transactions, bookings, skills, users CASCADE`)
	return err
}
