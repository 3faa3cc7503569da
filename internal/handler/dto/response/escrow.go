package response

import (
	"skillmarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type EscrowStatsResponse struct {
	UserID        uuid.UUID `json:"userId"`
	HeldTotal     int64     `json:"heldTotal"`
	ReleasedTotal int64     `json:"releasedTotal"`
	RefundedTotal int64     `json:"refundedTotal"`
	HeldCount     int64     `json:"heldCount"`
	ReleasedCount int64     `json:"releasedCount"`
	RefundedCount int64     `json:"refundedCount"`
}

func FromEscrowStatsView(rm *queries.EscrowStatsView) *EscrowStatsResponse {
	var resp EscrowStatsResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}
