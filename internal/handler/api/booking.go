package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "skillmarket/internal/handler/dto/request"
	resdto "skillmarket/internal/handler/dto/response"
	"skillmarket/internal/handler/middleware"
	"skillmarket/internal/pkg/errs"
	"skillmarket/internal/usecase/commands"
	"skillmarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Request a session with a provider; the session cost is held in escrow
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.bookingCommands.CreateBooking(c.Request.Context(), commands.CreateBookingParams{
		LearnerID:     userID,
		SkillID:       req.SkillID,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
	})
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}

// @Summary List bookings
// @Description List bookings where the current user is learner or provider
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} resdto.BookingListResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	items, err := h.bookingQueries.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.BookingListResponse, len(items))
	for i, rm := range items {
		response[i] = resdto.FromBookingListItem(rm)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get booking
// @Description Get a booking by ID; participants only
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := h.bookingID(c)
	if err != nil {
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Accept booking
// @Description Provider accepts a pending booking request
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/accept [post]
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.AcceptBooking(c.Request.Context(), actorID, bookingID)
	})
}

// @Summary Decline booking
// @Description Provider declines a pending booking; the escrow is refunded
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.DeclineBookingRequest false "Decline reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/decline [post]
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	var req reqdto.DeclineBookingRequest
	_ = c.ShouldBindJSON(&req)

	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.DeclineBooking(c.Request.Context(), actorID, bookingID, req.Reason)
	})
}

// @Summary Cancel booking
// @Description Either party cancels before the cutoff; the escrow is refunded
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancel reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req reqdto.CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.CancelBooking(c.Request.Context(), actorID, bookingID, req.Reason)
	})
}

// @Summary Complete session
// @Description Mark a confirmed session as completed after it ends; releases the escrow
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) CompleteSession(c *gin.Context) {
	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.CompleteSession(c.Request.Context(), actorID, bookingID)
	})
}

// @Summary Request reschedule
// @Description Either party proposes a new slot for a confirmed booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RequestRescheduleRequest true "Proposed slot"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) RequestReschedule(c *gin.Context) {
	var req reqdto.RequestRescheduleRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.RequestReschedule(c.Request.Context(), actorID, bookingID, req.NewDate, req.NewTime, req.TrimmedReason())
	})
}

// @Summary Accept reschedule
// @Description Counterparty accepts the proposed slot; the conflict check runs again
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/reschedule/accept [post]
func (h *BookingHandler) AcceptReschedule(c *gin.Context) {
	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.AcceptReschedule(c.Request.Context(), actorID, bookingID)
	})
}

// @Summary Decline reschedule
// @Description Counterparty declines the proposed slot; the original slot stands
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/reschedule/decline [post]
func (h *BookingHandler) DeclineReschedule(c *gin.Context) {
	h.transition(c, func(actorID, bookingID uuid.UUID) (*queries.BookingView, error) {
		return h.bookingCommands.DeclineReschedule(c.Request.Context(), actorID, bookingID)
	})
}

func (h *BookingHandler) transition(c *gin.Context, run func(actorID, bookingID uuid.UUID) (*queries.BookingView, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := h.bookingID(c)
	if err != nil {
		return
	}

	view, err := run(userID, id)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *BookingHandler) bookingID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return uuid.Nil, err
	}
	return id, nil
}

func (h *BookingHandler) respondCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, errs.ErrSkillNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Skill not found",
		})
	case errors.Is(err, errs.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	case errors.Is(err, errs.ErrEscrowNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Escrow transaction not found",
		})
	case errors.Is(err, errs.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Requested slot conflicts with an existing booking",
		})
	case errors.Is(err, errs.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Operation not allowed in the current booking status",
		})
	case errors.Is(err, errs.ErrEscrowNotHeld):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Escrow funds are no longer held",
		})
	case errors.Is(err, errs.ErrNotAuthorizedParty):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not authorized for this booking",
		})
	case errors.Is(err, errs.ErrCancelCutoffPassed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Cancellation window has closed",
		})
	case errors.Is(err, errs.ErrSessionNotEnded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Session has not ended yet",
		})
	case errors.Is(err, errs.ErrInsufficientCredits):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Insufficient credits",
		})
	case errors.Is(err, errs.ErrDomainValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Domain validation failed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
