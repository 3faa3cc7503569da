//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"skillmarket/internal/domain/user"
	"skillmarket/internal/handler/api"
	resdto "skillmarket/internal/handler/dto/response"
	"skillmarket/internal/usecase/queries"
	"skillmarket/tests/common/httptest"
	queriesmock "skillmarket/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EscrowHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockEscrowQueries
	handler     *api.EscrowHandler
	actorID     uuid.UUID
}

func (s *EscrowHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockEscrowQueries(s.mockCtrl)
	s.handler = api.NewEscrowHandler(s.mockQueries)
	s.actorID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.actorID)
		c.Set("user_role", user.RoleLearner)
		c.Next()
	}

	s.router.GET("/escrow/stats", authMiddleware, s.handler.GetStats)
}

func (s *EscrowHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestEscrowHandlerSuite(t *testing.T) {
	suite.Run(t, new(EscrowHandlerTestSuite))
}

func (s *EscrowHandlerTestSuite) TestGetStats() {
	url := "/escrow/stats"

	s.Run("success: returns the caller's aggregated totals", func() {
		view := &queries.EscrowStatsView{
			UserID:        s.actorID,
			HeldTotal:     40,
			ReleasedTotal: 120,
			RefundedTotal: 40,
			HeldCount:     1,
			ReleasedCount: 3,
			RefundedCount: 1,
		}
		s.mockQueries.EXPECT().StatsByUser(gomock.Any(), s.actorID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "test-token")

		var resp resdto.EscrowStatsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(s.actorID, resp.UserID)
		s.Equal(int64(40), resp.HeldTotal)
		s.Equal(int64(120), resp.ReleasedTotal)
		s.Equal(int64(3), resp.ReleasedCount)
	})

	s.Run("error: query failure maps to 500", func() {
		s.mockQueries.EXPECT().StatsByUser(gomock.Any(), s.actorID).
			Return(nil, errors.New("connection reset")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "test-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})

	s.Run("error: missing token is rejected", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}
