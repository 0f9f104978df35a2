package routes

import (
	adminapi "quizzq-backend/internal/api/admin"
	authapi "quizzq-backend/internal/api/auth"
	"quizzq-backend/internal/api/billing"
	classesapi "quizzq-backend/internal/api/classes"
	plansapi "quizzq-backend/internal/api/plans"
	"quizzq-backend/internal/api/quizzes"
	"quizzq-backend/internal/api/stripewebhook"
	usersapi "quizzq-backend/internal/api/users"
	"quizzq-backend/internal/app/http/middleware"
	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the constructed handlers and shared collaborators the router wires
// together.
type Deps struct {
	JWTSecret string
	Log       *zap.SugaredLogger
	Store     entitlement.Store

	Auth    *authapi.Handler
	Users   *usersapi.Handler
	Plans   *plansapi.Handler
	Billing *billing.Handler
	Webhook *stripewebhook.Handler
	Classes *classesapi.Handler
	Quizzes *quizzes.Handler
	Admin   *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestMetrics())

	// The webhook route gets raw bytes: no sanitizer, no session check. The
	// Stripe signature is the only authentication on this endpoint.
	r.POST("/webhook", d.Webhook.HandleWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeInput())

	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)
	public.GET("/plans", d.Plans.ListPlans)
	public.GET("/verify", d.Users.VerifyEmail)
	public.POST("/resend-verification", d.Auth.ResendVerification)
	public.POST("/request-password-reset", d.Auth.RequestPasswordReset)
	public.POST("/reset-password", d.Auth.ResetPassword)

	public.GET("/auth/google", d.Auth.GoogleStart)
	public.GET("/auth/google/callback", d.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me", d.Users.GetCurrentUser)
	auth.POST("/change-password", d.Auth.ChangePassword)
	auth.POST("/create-checkout-session", d.Billing.CreateCheckoutSession)
	auth.POST("/billing-portal", d.Billing.CreateBillingPortal)

	auth.GET("/classes", d.Classes.ListClasses)
	auth.POST("/classes", d.Classes.CreateClass)
	auth.POST("/classes/join", d.Classes.JoinClass)
	auth.GET("/classes/:id/members", d.Classes.ListMembers)

	auth.GET("/quizzes", d.Quizzes.ListQuizzes)
	auth.POST("/quizzes", d.Quizzes.CreateQuiz)
	auth.GET("/quizzes/:id", d.Quizzes.GetQuiz)
	auth.DELETE("/quizzes/:id", d.Quizzes.DeleteQuiz)
	auth.POST("/quizzes/:id/publish", d.Quizzes.PublishQuiz)
	auth.POST("/quizzes/:id/unpublish", d.Quizzes.UnpublishQuiz)

	// PRO-only capabilities
	pro := auth.Group("/")
	pro.Use(middleware.RequirePro(d.Store, d.Log))
	pro.POST("/quizzes/generate", d.Quizzes.GenerateQuiz)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole(users.RoleAdmin))
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.GET("/webhook-events", d.Admin.ListWebhookEvents)
	admin.GET("/stats", d.Admin.GetAdminStats)
	admin.POST("/sync-plans", d.Plans.SyncPlansFromStripe)
}
