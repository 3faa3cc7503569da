package api

import (
	"net/http"

	resdto "skillmarket/internal/handler/dto/response"
	"skillmarket/internal/handler/middleware"
	"skillmarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type EscrowHandler struct {
	escrowQueries queries.EscrowQueries
}

func NewEscrowHandler(escrowQueries queries.EscrowQueries) *EscrowHandler {
	return &EscrowHandler{escrowQueries: escrowQueries}
}

// @Summary Escrow stats
// @Description Aggregate held / released / refunded totals for the current user
// @Tags escrow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.EscrowStatsResponse
// @Failure 401 {object} map[string]string
// @Router /escrow/stats [get]
func (h *EscrowHandler) GetStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	stats, err := h.escrowQueries.StatsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromEscrowStatsView(stats))
}
