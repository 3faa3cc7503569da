//go:build e2e

package booking_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"skillmarket/internal/domain/user"
	resdto "skillmarket/internal/handler/dto/response"
	"skillmarket/tests/common/authtest"
	"skillmarket/tests/common/dbtest"
	"skillmarket/tests/common/httptest"
	"skillmarket/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const bookingsURL = "/api/bookings"

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

type fixture struct {
	ProviderID    uuid.UUID
	LearnerID     uuid.UUID
	SkillID       uuid.UUID
	ProviderToken string
	LearnerToken  string
}

// seedFixture creates a provider offering a 60-minute, 40-credit skill and a
// learner holding the given credits, both logged in.
func (s *BookingSuite) seedFixture(learnerCredits int64) fixture {
	t := s.T()

	providerEmail := fmt.Sprintf("provider-%s@example.com", uuid.New().String()[:8])
	learnerEmail := fmt.Sprintf("learner-%s@example.com", uuid.New().String()[:8])

	providerID := dbtest.CreateTestUser(t, s.DB, providerEmail, string(user.RoleProvider), 0)
	learnerID := dbtest.CreateTestUser(t, s.DB, learnerEmail, string(user.RoleLearner), learnerCredits)
	skillID := dbtest.CreateTestSkill(t, s.DB, providerID, "Go Programming", 60, 40)

	return fixture{
		ProviderID:    providerID,
		LearnerID:     learnerID,
		SkillID:       skillID,
		ProviderToken: authtest.LoginUser(t, s.Router, providerEmail, dbtest.DefaultPassword),
		LearnerToken:  authtest.LoginUser(t, s.Router, learnerEmail, dbtest.DefaultPassword),
	}
}

func bookingRequest(skillID uuid.UUID, date time.Time, timeOfDay string) map[string]any {
	return map[string]any{
		"skill_id":       skillID,
		"preferred_date": date.Format(time.RFC3339),
		"preferred_time": timeOfDay,
	}
}

// futureDate is far enough out that the cancellation cutoff never interferes.
func futureDate() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func pastDate() time.Time {
	d := time.Now().UTC().AddDate(0, 0, -2)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *BookingSuite) createBooking(f fixture, date time.Time, timeOfDay string) resdto.BookingResponse {
	t := s.T()

	rec := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
		bookingRequest(f.SkillID, date, timeOfDay), f.LearnerToken)
	require.Equal(t, http.StatusCreated, rec.Code, "Booking creation failed: %s", rec.Body.String())

	var created resdto.BookingResponse
	require.NoError(t, httptest.DecodeResponseBody(t, rec.Body, &created))
	return created
}

// =============================================================================
// TestBookingHoldAndRefund - the escrow follows decline and cancel
// =============================================================================

func (s *BookingSuite) TestBookingHoldAndRefund() {
	s.Run("creating a booking holds the session cost", func() {
		f := s.seedFixture(100)

		created := s.createBooking(f, futureDate(), "10:00")
		s.Equal("pending", created.Status)
		s.Equal(int64(40), created.SessionCost)

		wallet := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		s.Equal(int64(60), wallet.Credits)
		s.Equal(int64(40), wallet.HeldCredits)
		s.Equal("held", dbtest.GetEscrowStatus(s.T(), s.DB, created.ID))
	})

	s.Run("declining refunds the full hold", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, futureDate(), "10:00")

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/decline",
			map[string]any{"reason": "schedule full"}, f.ProviderToken)

		var declined resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &declined)
		s.Equal("declined", declined.Status)

		wallet := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		s.Equal(int64(100), wallet.Credits)
		s.Equal(int64(0), wallet.HeldCredits)
		s.Equal("refunded", dbtest.GetEscrowStatus(s.T(), s.DB, created.ID))
	})

	s.Run("cancelling before the cutoff refunds the learner", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, futureDate(), "10:00")

		acceptRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)
		httptest.AssertSuccessResponse(s.T(), acceptRec, http.StatusOK, nil)

		cancelRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/cancel", nil, f.LearnerToken)
		httptest.AssertSuccessResponse(s.T(), cancelRec, http.StatusOK, nil)

		wallet := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		s.Equal(int64(100), wallet.Credits)
		s.Equal(int64(0), wallet.HeldCredits)
	})

	s.Run("insufficient credits block the booking", func() {
		f := s.seedFixture(39)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL,
			bookingRequest(f.SkillID, futureDate(), "10:00"), f.LearnerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")

		wallet := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		s.Equal(int64(39), wallet.Credits)
		s.Equal(int64(0), dbtest.CountBookings(s.T(), s.DB, f.ProviderID))
	})
}

// =============================================================================
// TestEscrowRelease - completion pays the provider
// =============================================================================

func (s *BookingSuite) TestEscrowRelease() {
	s.Run("completing a past session releases the escrow", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, pastDate(), "10:00")

		acceptRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)
		httptest.AssertSuccessResponse(s.T(), acceptRec, http.StatusOK, nil)

		completeRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/complete", nil, f.ProviderToken)

		var completed resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), completeRec, http.StatusOK, &completed)
		s.Equal("completed", completed.Status)

		learner := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		provider := dbtest.GetWallet(s.T(), s.DB, f.ProviderID)
		s.Equal(int64(60), learner.Credits)
		s.Equal(int64(0), learner.HeldCredits)
		s.Equal(int64(40), provider.Credits)
		s.Equal(int64(40), provider.EarnedCredits)
		s.Equal("released", dbtest.GetEscrowStatus(s.T(), s.DB, created.ID))
	})

	s.Run("completing before the session ends is rejected", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, futureDate(), "10:00")

		acceptRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)
		httptest.AssertSuccessResponse(s.T(), acceptRec, http.StatusOK, nil)

		completeRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/complete", nil, f.ProviderToken)
		httptest.AssertErrorResponse(s.T(), completeRec, http.StatusUnprocessableEntity, "")

		s.Equal("held", dbtest.GetEscrowStatus(s.T(), s.DB, created.ID))
	})

	s.Run("escrow stats reflect settled transactions", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, pastDate(), "10:00")

		httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)
		httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/complete", nil, f.ProviderToken)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/escrow/stats", nil, f.LearnerToken)

		var stats resdto.EscrowStatsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &stats)
		s.Equal(int64(40), stats.ReleasedTotal)
		s.Equal(int64(1), stats.ReleasedCount)
		s.Equal(int64(0), stats.HeldTotal)
	})
}

// =============================================================================
// TestSlotConflicts - buffer enforcement and the concurrent-create race
// =============================================================================

func (s *BookingSuite) TestSlotConflicts() {
	s.Run("overlapping and buffered slots are rejected, a clear gap passes", func() {
		f := s.seedFixture(200)
		s.createBooking(f, futureDate(), "10:00") // occupies 10:00-11:00

		overlap := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL,
			bookingRequest(f.SkillID, futureDate(), "10:30"), f.LearnerToken)
		httptest.AssertErrorResponse(s.T(), overlap, http.StatusConflict, "")

		buffered := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL,
			bookingRequest(f.SkillID, futureDate(), "11:10"), f.LearnerToken)
		httptest.AssertErrorResponse(s.T(), buffered, http.StatusConflict, "")

		// 20 minute gap clears the 15 minute buffer
		clearGap := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL,
			bookingRequest(f.SkillID, futureDate(), "11:20"), f.LearnerToken)

		var created resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), clearGap, http.StatusCreated, &created)
		s.Equal("pending", created.Status)
	})

	s.Run("concurrent creations for the same slot admit exactly one", func() {
		t := s.T()
		f := s.seedFixture(100)

		rivalEmail := fmt.Sprintf("rival-%s@example.com", uuid.New().String()[:8])
		rivalID := dbtest.CreateTestUser(t, s.DB, rivalEmail, string(user.RoleLearner), 100)
		rivalToken := authtest.LoginUser(t, s.Router, rivalEmail, dbtest.DefaultPassword)

		tokens := []string{f.LearnerToken, rivalToken}
		codes := make([]int, len(tokens))

		var wg sync.WaitGroup
		for i, token := range tokens {
			wg.Add(1)
			go func(i int, token string) {
				defer wg.Done()
				rec := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
					bookingRequest(f.SkillID, futureDate(), "10:00"), token)
				codes[i] = rec.Code
			}(i, token)
		}
		wg.Wait()

		winners := 0
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				winners++
			case http.StatusConflict:
			default:
				t.Fatalf("unexpected status code %d", code)
			}
		}
		s.Equal(1, winners, "exactly one concurrent booking must win")
		s.Equal(int64(1), dbtest.CountBookings(t, s.DB, f.ProviderID))

		// Conservation: exactly one of the two learners is debited.
		learner := dbtest.GetWallet(t, s.DB, f.LearnerID)
		rival := dbtest.GetWallet(t, s.DB, rivalID)
		s.Equal(int64(160), learner.Credits+rival.Credits)
		s.Equal(int64(40), learner.HeldCredits+rival.HeldCredits)
	})
}

// =============================================================================
// TestReschedule - proposing and answering a new slot
// =============================================================================

func (s *BookingSuite) TestReschedule() {
	s.Run("accepted reschedule moves the slot, funds untouched", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, futureDate(), "10:00")

		httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)

		newDate := futureDate().AddDate(0, 0, 1)
		reqRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/reschedule",
			map[string]any{
				"new_date": newDate.Format(time.RFC3339),
				"new_time": "14:00",
				"reason":   "conflict came up",
			}, f.LearnerToken)

		var requested resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), reqRec, http.StatusOK, &requested)
		s.Equal("reschedule_requested", requested.Status)
		s.NotNil(requested.Reschedule)

		acceptRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/reschedule/accept", nil, f.ProviderToken)

		var accepted resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), acceptRec, http.StatusOK, &accepted)
		s.Equal("confirmed", accepted.Status)
		s.Equal("14:00", accepted.PreferredTime)
		s.Equal(newDate.Day(), accepted.StartAt.UTC().Day())
		s.Nil(accepted.Reschedule)
		s.Equal(int64(40), accepted.SessionCost)

		wallet := dbtest.GetWallet(s.T(), s.DB, f.LearnerID)
		s.Equal(int64(40), wallet.HeldCredits)
		s.Equal("held", dbtest.GetEscrowStatus(s.T(), s.DB, created.ID))
	})

	s.Run("requester cannot answer their own request", func() {
		f := s.seedFixture(100)
		created := s.createBooking(f, futureDate(), "10:00")

		httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/accept", nil, f.ProviderToken)
		httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/reschedule",
			map[string]any{"new_date": futureDate().AddDate(0, 0, 1).Format(time.RFC3339), "new_time": "14:00"},
			f.LearnerToken)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/reschedule/accept", nil, f.LearnerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "")
	})
}
