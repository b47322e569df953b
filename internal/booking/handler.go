package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymflow/internal/api"
	"gymflow/internal/auth"
	"gymflow/internal/clock"
	"gymflow/internal/email"
	"gymflow/internal/logger"
	"gymflow/internal/membership"
	"gymflow/internal/plan"
	"gymflow/internal/schedule"
)

type Handler struct {
	svc      Service
	sessions schedule.Service
	email    *email.Service
}

func NewHandler(db *sqlx.DB, clk clock.Clock, emailService *email.Service) *Handler {
	plans := plan.NewService(plan.NewRepository(db), clk)
	sessions := schedule.NewService(schedule.NewRepository(db), plans, clk)
	ledger := membership.NewService(membership.NewRepository(db), plans, membership.AcceptAllGateway(), clk)
	return &Handler{
		svc:      NewService(NewRepository(db), sessions, ledger, clk),
		sessions: sessions,
		email:    emailService,
	}
}

func NewHandlerWithService(svc Service, sessions schedule.Service, emailService *email.Service) *Handler {
	return &Handler{svc: svc, sessions: sessions, email: emailService}
}

// BookSession godoc
// @Summary      Book a class session
// @Description  Admits the user if the session is bookable, their membership covers it, and a seat is free.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        booking  body      BookSessionRequest  true  "Session to book"
// @Success      201      {object}  Booking
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) BookSession(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.svc.BookSession(c.Request.Context(), userID, req.ClassSessionID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	h.notifyBookingConfirmed(c, booking)

	c.JSON(http.StatusCreated, booking)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [delete]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	if err := h.svc.CancelBooking(c.Request.Context(), userID, bookingID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "booking cancelled"})
}

// GetUserBookings godoc
// @Summary      List own bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  BookingWithDetails
// @Router       /bookings [get]
func (h *Handler) GetUserBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.svc.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBookingsBySession godoc
// @Summary      List bookings for a session
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path     int  true  "Session ID"
// @Success      200        {array}  Booking
// @Router       /admin/sessions/{sessionID}/bookings [get]
func (h *Handler) GetBookingsBySession(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid session ID"})
		return
	}

	bookings, err := h.svc.GetBookingsBySession(c.Request.Context(), sessionID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) notifyBookingConfirmed(c *gin.Context, booking *Booking) {
	if h.email == nil {
		return
	}

	userEmail, ok := auth.GetUserEmail(c)
	if !ok {
		return
	}

	className := "your class"
	startsAt := booking.BookedAt
	session, err := h.sessions.GetSessionByID(c.Request.Context(), booking.ClassSessionID)
	if err == nil {
		startsAt = session.StartTime
		if class, err := h.sessions.GetClassByID(c.Request.Context(), session.GymClassID); err == nil {
			className = class.Name
		}
	}

	if err := h.email.SendBookingConfirmation(c.Request.Context(), userEmail, auth.GetUserName(c), className, startsAt); err != nil {
		logger.WithError(err).Error("failed to queue booking confirmation email")
	}
}
