package plan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymflow/internal/api"
	"gymflow/internal/clock"
)

type Handler struct {
	svc Service
}

func NewHandler(db *sqlx.DB, clk clock.Clock) *Handler {
	return &Handler{svc: NewService(NewRepository(db), clk)}
}

func NewHandlerWithService(svc Service) *Handler {
	return &Handler{svc: svc}
}

// CreatePlan godoc
// @Summary      Create membership plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        plan  body      CreatePlanRequest  true  "Plan"
// @Success      201   {object}  Plan
// @Failure      400   {object}  api.ErrorResponse
// @Router       /admin/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.svc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPlans godoc
// @Summary      List membership plans
// @Tags         plans
// @Produce      json
// @Success      200  {array}  Plan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	onlyActive := c.Query("all") == ""

	plans, err := h.svc.ListPlans(c.Request.Context(), onlyActive)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetCatalog godoc
// @Summary      Get plan with its current effective price
// @Tags         plans
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  PlanWithPrice
// @Failure      404     {object}  api.ErrorResponse
// @Router       /plans/{planID} [get]
func (h *Handler) GetCatalog(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	result, err := h.svc.GetCatalog(c.Request.Context(), planID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdatePlan godoc
// @Summary      Update plan price or metadata
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID  path      int                true  "Plan ID"
// @Param        plan    body      UpdatePlanRequest  true  "Fields to update"
// @Success      200     {object}  Plan
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/plans/{planID} [patch]
func (h *Handler) UpdatePlan(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.svc.UpdatePlan(c.Request.Context(), planID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeactivatePlan godoc
// @Summary      Deactivate plan
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/plans/{planID} [delete]
func (h *Handler) DeactivatePlan(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	if err := h.svc.DeactivatePlan(c.Request.Context(), planID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "plan deactivated"})
}

// ApplyPromotion godoc
// @Summary      Apply a promotion to a plan
// @Description  Deactivates any other active promotion for the plan and activates this one.
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID  path      int                    true  "Plan ID"
// @Param        promo   body      ApplyPromotionRequest  true  "Promotion"
// @Success      201     {object}  Promotion
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/plans/{planID}/promotions [post]
func (h *Handler) ApplyPromotion(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	var req ApplyPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	promo, err := h.svc.ApplyPromotion(c.Request.Context(), planID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, promo)
}

// StopPromotion godoc
// @Summary      Stop a promotion
// @Tags         promotions
// @Security     BearerAuth
// @Produce      json
// @Param        promoID  path      int  true  "Promotion ID"
// @Success      200      {object}  api.MessageResponse
// @Router       /admin/promotions/{promoID}/stop [post]
func (h *Handler) StopPromotion(c *gin.Context) {
	promoID, err := strconv.Atoi(c.Param("promoID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid promotion ID"})
		return
	}

	if err := h.svc.StopPromotion(c.Request.Context(), promoID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "promotion stopped"})
}

// ListPromotions godoc
// @Summary      List promotions for a plan
// @Tags         promotions
// @Security     BearerAuth
// @Produce      json
// @Param        planID  path     int  true  "Plan ID"
// @Success      200     {array}  Promotion
// @Router       /admin/plans/{planID}/promotions [get]
func (h *Handler) ListPromotions(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	promos, err := h.svc.ListPromotions(c.Request.Context(), planID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, promos)
}
