//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"skillmarket/internal/domain/user"
	"skillmarket/internal/handler/api"
	resdto "skillmarket/internal/handler/dto/response"
	"skillmarket/internal/pkg/errs"
	"skillmarket/internal/usecase/queries"
	"skillmarket/tests/common/builder"
	"skillmarket/tests/common/httptest"
	"skillmarket/tests/common/testutil"
	commandsmock "skillmarket/tests/mock/commands"
	queriesmock "skillmarket/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	actorID      uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.actorID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.actorID)
		c.Set("user_role", user.RoleLearner)
		c.Next()
	}

	s.router.POST("/bookings", authMiddleware, s.handler.CreateBooking)
	s.router.GET("/bookings", authMiddleware, s.handler.ListBookings)
	s.router.GET("/bookings/:id", authMiddleware, s.handler.GetBooking)
	s.router.POST("/bookings/:id/accept", authMiddleware, s.handler.AcceptBooking)
	s.router.POST("/bookings/:id/decline", authMiddleware, s.handler.DeclineBooking)
	s.router.POST("/bookings/:id/cancel", authMiddleware, s.handler.CancelBooking)
	s.router.POST("/bookings/:id/complete", authMiddleware, s.handler.CompleteSession)
	s.router.POST("/bookings/:id/reschedule", authMiddleware, s.handler.RequestReschedule)
	s.router.POST("/bookings/:id/reschedule/accept", authMiddleware, s.handler.AcceptReschedule)
	s.router.POST("/bookings/:id/reschedule/decline", authMiddleware, s.handler.DeclineReschedule)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

// ================================================================================
// TestCreateBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	url := "/bookings"

	reqBody := builder.NewBookingBuilder().BuildCreateRequestDTO()
	returnView := builder.NewBookingBuilder().BuildViewQuery()

	s.Run("success: returns 201 Created with the booking", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal("pending", response.Status)
		s.Equal(returnView.SessionCost, response.SessionCost)
	})

	s.Run("error: 400 Bad Request on missing fields", func() {
		missing := []string{"skill_id", "preferred_date", "preferred_time"}
		for _, field := range missing {
			s.Run("missing "+field, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field(field, nil))
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{"unknown skill", errs.ErrSkillNotFound, http.StatusNotFound},
			{"slot conflict", errs.ErrSlotConflict, http.StatusConflict},
			{"insufficient credits", errs.ErrInsufficientCredits, http.StatusUnprocessableEntity},
			{"domain validation", errs.ErrDomainValidation, http.StatusUnprocessableEntity},
			{"unexpected failure", errors.New("database error"), http.StatusInternalServerError},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

// ================================================================================
// TestListBookings
// ================================================================================

func (s *BookingHandlerTestSuite) TestListBookings() {
	url := "/bookings"

	s.Run("success: returns 200 OK with the user's bookings", func() {
		listItem := builder.NewBookingBuilder().BuildListItem()
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.actorID, 0).
			Return([]*queries.BookingListItem{listItem}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response []resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 1)
		s.Equal(listItem.ID, response[0].ID)
		s.Equal(listItem.Status, response[0].Status)
	})

	s.Run("success: forwards the limit parameter", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.actorID, 10).
			Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?limit=10", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request on a malformed limit", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?limit=abc", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestGetBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestGetBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String()

	returnView := builder.NewBookingBuilder().BuildViewQuery()
	returnView.ID = bookingID

	s.Run("success: returns 200 OK with BookingResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.actorID, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(bookingID, response.ID)
		s.Equal(returnView.SkillName, response.SkillName)
	})

	s.Run("error: 403 Forbidden for a non-participant", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.actorID, bookingID).
			Return(nil, errs.ErrNotAuthorizedParty).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "")
	})

	s.Run("error: 404 Not Found for an unknown booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.actorID, bookingID).
			Return(nil, errs.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("error: 400 Bad Request for a malformed ID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestTransitionEndpoints
// ================================================================================

func (s *BookingHandlerTestSuite) TestAcceptBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/accept"

	returnView := builder.NewBookingBuilder().BuildViewQuery()
	returnView.ID = bookingID
	returnView.Status = "confirmed"

	s.Run("success: returns 200 OK with the confirmed booking", func() {
		s.mockCommands.EXPECT().AcceptBooking(gomock.Any(), s.actorID, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("confirmed", response.Status)
	})

	s.Run("error: maps transition errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{"not the provider", errs.ErrNotAuthorizedParty, http.StatusForbidden},
			{"already confirmed", errs.ErrInvalidTransition, http.StatusConflict},
			{"unknown booking", errs.ErrBookingNotFound, http.StatusNotFound},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().AcceptBooking(gomock.Any(), s.actorID, bookingID).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

func (s *BookingHandlerTestSuite) TestDeclineBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/decline"

	returnView := builder.NewBookingBuilder().BuildViewQuery()
	returnView.ID = bookingID
	returnView.Status = "declined"

	s.Run("success: passes the reason through", func() {
		s.mockCommands.EXPECT().DeclineBooking(gomock.Any(), s.actorID, bookingID, "schedule full").
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"reason": "schedule full"}, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: body is optional", func() {
		s.mockCommands.EXPECT().DeclineBooking(gomock.Any(), s.actorID, bookingID, "").
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 404 Not Found when the escrow row is missing", func() {
		s.mockCommands.EXPECT().DeclineBooking(gomock.Any(), s.actorID, bookingID, "").
			Return(nil, errs.ErrEscrowNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

func (s *BookingHandlerTestSuite) TestCancelBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/cancel"

	s.Run("error: 422 Unprocessable Entity past the cutoff", func() {
		s.mockCommands.EXPECT().CancelBooking(gomock.Any(), s.actorID, bookingID, "").
			Return(nil, errs.ErrCancelCutoffPassed).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")
	})
}

func (s *BookingHandlerTestSuite) TestCompleteSession() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/complete"

	s.Run("error: 422 Unprocessable Entity before the session ends", func() {
		s.mockCommands.EXPECT().CompleteSession(gomock.Any(), s.actorID, bookingID).
			Return(nil, errs.ErrSessionNotEnded).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")
	})

	s.Run("error: 409 Conflict when the escrow already settled", func() {
		s.mockCommands.EXPECT().CompleteSession(gomock.Any(), s.actorID, bookingID).
			Return(nil, errs.ErrEscrowNotHeld).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")
	})
}

func (s *BookingHandlerTestSuite) TestRequestReschedule() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/reschedule"

	reqBody := map[string]any{
		"new_date": "2026-03-11T00:00:00Z",
		"new_time": "14:00",
		"reason":   "conflict came up",
	}

	returnView := builder.NewBookingBuilder().BuildViewQuery()
	returnView.ID = bookingID
	returnView.Status = "reschedule_requested"

	s.Run("success: returns 200 OK with the pending request", func() {
		s.mockCommands.EXPECT().
			RequestReschedule(gomock.Any(), s.actorID, bookingID, gomock.Any(), "14:00", "conflict came up").
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("reschedule_requested", response.Status)
	})

	s.Run("error: 400 Bad Request on missing fields", func() {
		for _, field := range []string{"new_date", "new_time"} {
			s.Run("missing "+field, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field(field, nil))
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})
}

func (s *BookingHandlerTestSuite) TestRescheduleResponses() {
	bookingID := uuid.New()

	s.Run("accept: 409 Conflict when the proposed slot got taken", func() {
		s.mockCommands.EXPECT().AcceptReschedule(gomock.Any(), s.actorID, bookingID).
			Return(nil, errs.ErrSlotConflict).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/bookings/"+bookingID.String()+"/reschedule/accept", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")
	})

	s.Run("decline: 200 OK keeps the original slot", func() {
		returnView := builder.NewBookingBuilder().BuildViewQuery()
		returnView.ID = bookingID
		returnView.Status = "confirmed"

		s.mockCommands.EXPECT().DeclineReschedule(gomock.Any(), s.actorID, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/bookings/"+bookingID.String()+"/reschedule/decline", nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("confirmed", response.Status)
	})
}
