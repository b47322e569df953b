package membership

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
	"gymflow/internal/plan"
)

type Handler struct {
	svc   Service
	email *email.Service
	plans plan.Service
}

func NewHandler(db *sqlx.DB, clk clock.Clock, emailService *email.Service, gateway PaymentGateway) *Handler {
	plans := plan.NewService(plan.NewRepository(db), clk)
	return &Handler{
		svc:   NewService(NewRepository(db), plans, gateway, clk),
		email: emailService,
		plans: plans,
	}
}

func NewHandlerWithService(svc Service, plans plan.Service, emailService *email.Service) *Handler {
	return &Handler{svc: svc, email: emailService, plans: plans}
}

// Subscribe godoc
// @Summary      Subscribe to a plan
// @Description  Creates a pending subscription and its first invoice at today's effective price.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        subscription  body      SubscribeRequest  true  "Plan to subscribe to"
// @Success      201           {object}  SubscribeResponse
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Router       /subscriptions [post]
func (h *Handler) Subscribe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.svc.Subscribe(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	h.notifyInvoiceCreated(c, resp.Subscription.PlanID, resp.Invoice)

	c.JSON(http.StatusCreated, resp)
}

// PayInvoice godoc
// @Summary      Pay an invoice
// @Description  Settles a pending invoice and activates or extends the subscription.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        invoiceID  path      int               true  "Invoice ID"
// @Param        payment    body      PayInvoiceRequest true  "Payment method"
// @Success      200        {object}  SubscribeResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      422        {object}  api.ErrorResponse
// @Router       /invoices/{invoiceID}/pay [post]
func (h *Handler) PayInvoice(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	invoiceID, err := strconv.Atoi(c.Param("invoiceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid invoice ID"})
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	inv, sub, err := h.svc.PayInvoice(c.Request.Context(), userID, invoiceID, req.PaymentMethodID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	h.notifyPaymentReceived(c, inv, sub)

	c.JSON(http.StatusOK, SubscribeResponse{Subscription: sub, Invoice: inv})
}

// CancelSubscription godoc
// @Summary      Cancel an unpaid subscription
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        subID  path      int  true  "Subscription ID"
// @Success      200    {object}  api.MessageResponse
// @Failure      404    {object}  api.ErrorResponse
// @Failure      422    {object}  api.ErrorResponse
// @Router       /subscriptions/{subID} [delete]
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subID, err := strconv.Atoi(c.Param("subID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid subscription ID"})
		return
	}

	if err := h.svc.CancelSubscription(c.Request.Context(), userID, subID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "subscription cancelled"})
}

// ToggleAutoRenew godoc
// @Summary      Toggle auto-renew on a subscription
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        subID  path      int  true  "Subscription ID"
// @Success      200    {object}  map[string]bool
// @Failure      404    {object}  api.ErrorResponse
// @Router       /subscriptions/{subID}/auto-renew [post]
func (h *Handler) ToggleAutoRenew(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subID, err := strconv.Atoi(c.Param("subID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid subscription ID"})
		return
	}

	autoRenew, err := h.svc.ToggleAutoRenew(c.Request.Context(), userID, subID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auto_renew": autoRenew})
}

// CreateRenewalInvoice godoc
// @Summary      Create a renewal invoice
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        subID  path      int  true  "Subscription ID"
// @Success      201    {object}  Invoice
// @Failure      404    {object}  api.ErrorResponse
// @Failure      409    {object}  api.ErrorResponse
// @Router       /subscriptions/{subID}/renew [post]
func (h *Handler) CreateRenewalInvoice(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subID, err := strconv.Atoi(c.Param("subID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid subscription ID"})
		return
	}

	inv, err := h.svc.CreateRenewalInvoice(c.Request.Context(), userID, subID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	h.notifyInvoiceCreated(c, 0, inv)

	c.JSON(http.StatusCreated, inv)
}

// ListSubscriptions godoc
// @Summary      List my subscriptions
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  SubscriptionView
// @Router       /subscriptions [get]
func (h *Handler) ListSubscriptions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subs, err := h.svc.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// ListInvoices godoc
// @Summary      List my invoices
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Invoice
// @Router       /invoices [get]
func (h *Handler) ListInvoices(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	invoices, err := h.svc.ListInvoices(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// MarkOverdueInvoices godoc
// @Summary      Mark overdue invoices
// @Description  Moves pending invoices past their due date to OVERDUE.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /admin/invoices/sweep-overdue [post]
func (h *Handler) MarkOverdueInvoices(c *gin.Context) {
	count, err := h.svc.MarkOverdueInvoices(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_overdue": count})
}

func (h *Handler) notifyInvoiceCreated(c *gin.Context, planID int, inv *Invoice) {
	if h.email == nil || inv == nil {
		return
	}
	userEmail, ok := auth.GetUserEmail(c)
	if !ok {
		return
	}

	planName := "membership"
	if planID > 0 {
		if p, err := h.plans.GetCatalog(c.Request.Context(), planID); err == nil {
			planName = p.Name
		}
	}

	if err := h.email.SendInvoiceCreated(c.Request.Context(), userEmail, auth.GetUserName(c), planName, inv.AmountCents, inv.DueDate); err != nil {
		logger.Errorf("invoice notification failed: %v", err)
	}
}

func (h *Handler) notifyPaymentReceived(c *gin.Context, inv *Invoice, sub *Subscription) {
	if h.email == nil || inv == nil || sub == nil {
		return
	}
	userEmail, ok := auth.GetUserEmail(c)
	if !ok {
		return
	}

	planName := "membership"
	if p, err := h.plans.GetCatalog(c.Request.Context(), sub.PlanID); err == nil {
		planName = p.Name
	}

	if err := h.email.SendPaymentReceipt(c.Request.Context(), userEmail, auth.GetUserName(c), planName, inv.AmountCents, sub.EndDate); err != nil {
		logger.Errorf("receipt notification failed: %v", err)
	}
}
