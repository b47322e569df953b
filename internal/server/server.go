package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymflow/internal/auth"
	"gymflow/internal/booking"
	"gymflow/internal/clock"
	"gymflow/internal/config"
	"gymflow/internal/email"
	"gymflow/internal/membership"
	"gymflow/internal/plan"
	"gymflow/internal/schedule"
	"gymflow/internal/wallet"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service, clk clock.Clock) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	planHandler := plan.NewHandler(db, clk)
	membershipHandler := membership.NewHandler(db, clk, emailService, wallet.NewGateway(db))
	scheduleHandler := schedule.NewHandler(db, plan.NewService(plan.NewRepository(db), clk), clk)
	bookingHandler := booking.NewHandler(db, clk, emailService)
	walletHandler := wallet.NewHandler(db)

	public := router.Group("/")
	{
		public.GET("/plans", planHandler.ListPlans)
		public.GET("/plans/:planID", planHandler.GetCatalog)
		public.GET("/classes", scheduleHandler.ListClasses)
		public.GET("/classes/:classID", scheduleHandler.GetClass)
		public.GET("/classes/:classID/sessions", scheduleHandler.ListUpcomingSessions)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/subscriptions", membershipHandler.Subscribe)
		protected.GET("/subscriptions", membershipHandler.ListSubscriptions)
		protected.DELETE("/subscriptions/:subID", membershipHandler.CancelSubscription)
		protected.POST("/subscriptions/:subID/auto-renew", membershipHandler.ToggleAutoRenew)
		protected.POST("/subscriptions/:subID/renew", membershipHandler.CreateRenewalInvoice)
		protected.GET("/invoices", membershipHandler.ListInvoices)
		protected.POST("/invoices/:invoiceID/pay", membershipHandler.PayInvoice)

		protected.POST("/bookings", bookingHandler.BookSession)
		protected.GET("/bookings", bookingHandler.GetUserBookings)
		protected.DELETE("/bookings/:bookingID", bookingHandler.CancelBooking)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/topup", walletHandler.TopUp)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/plans", planHandler.CreatePlan)
		admin.PATCH("/plans/:planID", planHandler.UpdatePlan)
		admin.DELETE("/plans/:planID", planHandler.DeactivatePlan)
		admin.POST("/plans/:planID/promotions", planHandler.ApplyPromotion)
		admin.GET("/plans/:planID/promotions", planHandler.ListPromotions)
		admin.POST("/promotions/:promoID/stop", planHandler.StopPromotion)

		admin.POST("/classes", scheduleHandler.CreateClass)
		admin.DELETE("/classes/:classID", scheduleHandler.DeleteClass)
		admin.POST("/classes/:classID/sessions", scheduleHandler.CreateSession)
		admin.POST("/classes/:classID/sessions/generate", scheduleHandler.GenerateRecurring)
		admin.POST("/sessions/:sessionID/cancel", scheduleHandler.CancelSession)
		admin.GET("/sessions/:sessionID/bookings", bookingHandler.GetBookingsBySession)

		admin.POST("/invoices/sweep-overdue", membershipHandler.MarkOverdueInvoices)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
