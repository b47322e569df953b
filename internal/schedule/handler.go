package schedule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymflow/internal/api"
	"gymflow/internal/clock"
	"gymflow/internal/plan"
)

type Handler struct {
	svc Service
}

func NewHandler(db *sqlx.DB, plans plan.Service, clk clock.Clock) *Handler {
	return &Handler{svc: NewService(NewRepository(db), plans, clk)}
}

func NewHandlerWithService(svc Service) *Handler {
	return &Handler{svc: svc}
}

// CreateClass godoc
// @Summary      Create gym class
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        class  body      CreateClassRequest  true  "Class"
// @Success      201    {object}  GymClass
// @Failure      400    {object}  api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	class, err := h.svc.CreateClass(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// ListClasses godoc
// @Summary      List gym classes
// @Tags         classes
// @Produce      json
// @Success      200  {array}  GymClass
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	onlyActive := c.Query("all") == ""

	classes, err := h.svc.ListClasses(c.Request.Context(), onlyActive)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// GetClass godoc
// @Summary      Get gym class
// @Tags         classes
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      200      {object}  GymClass
// @Failure      404      {object}  api.ErrorResponse
// @Router       /classes/{classID} [get]
func (h *Handler) GetClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid class ID"})
		return
	}

	class, err := h.svc.GetClassByID(c.Request.Context(), classID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass godoc
// @Summary      Delete gym class
// @Description  Fails while the class still has non-canceled future sessions.
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      200      {object}  api.MessageResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/classes/{classID} [delete]
func (h *Handler) DeleteClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid class ID"})
		return
	}

	if err := h.svc.DeleteClass(c.Request.Context(), classID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "class deleted"})
}

// CreateSession godoc
// @Summary      Create a single class session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        classID  path      int                   true  "Class ID"
// @Param        session  body      CreateSessionRequest  true  "Session"
// @Success      201      {object}  ClassSession
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/classes/{classID}/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid class ID"})
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.svc.CreateSession(c.Request.Context(), classID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GenerateRecurring godoc
// @Summary      Generate recurring sessions
// @Description  Creates one session for each day in the range whose weekday matches the repeat pattern.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        classID  path      int                       true  "Class ID"
// @Param        pattern  body      GenerateRecurringRequest  true  "Repeat pattern"
// @Success      201      {object}  GenerateRecurringResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/classes/{classID}/sessions/generate [post]
func (h *Handler) GenerateRecurring(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid class ID"})
		return
	}

	var req GenerateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if verrs := api.ValidateStruct(req); len(verrs) > 0 {
		api.RespondWithValidationErrors(c, verrs)
		return
	}

	created, err := h.svc.GenerateRecurring(c.Request.Context(), classID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, GenerateRecurringResponse{Created: created})
}

// ListUpcomingSessions godoc
// @Summary      List upcoming sessions with availability
// @Tags         sessions
// @Produce      json
// @Param        classID  path     int  true  "Class ID"
// @Success      200      {array}  SessionWithAvailability
// @Failure      404      {object} api.ErrorResponse
// @Router       /classes/{classID}/sessions [get]
func (h *Handler) ListUpcomingSessions(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid class ID"})
		return
	}

	sessions, err := h.svc.ListUpcomingSessions(c.Request.Context(), classID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// CancelSession godoc
// @Summary      Cancel a class session
// @Description  The session is kept for booking history but excluded from admission and listings.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/sessions/{sessionID}/cancel [post]
func (h *Handler) CancelSession(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid session ID"})
		return
	}

	if err := h.svc.CancelSession(c.Request.Context(), sessionID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "session canceled"})
}
