package main

import (
	"context"
	"log"
	"time"

	"quizzq-backend/config"
	"quizzq-backend/database"
	"quizzq-backend/internal/ai"
	adminapi "quizzq-backend/internal/api/admin"
	authapi "quizzq-backend/internal/api/auth"
	billingapi "quizzq-backend/internal/api/billing"
	classesapi "quizzq-backend/internal/api/classes"
	plansapi "quizzq-backend/internal/api/plans"
	quizzesapi "quizzq-backend/internal/api/quizzes"
	"quizzq-backend/internal/api/stripewebhook"
	usersapi "quizzq-backend/internal/api/users"
	routes "quizzq-backend/internal/app/http"
	"quizzq-backend/internal/domain/plans"
	"quizzq-backend/internal/infra/store"
	"quizzq-backend/internal/infra/stripeapi"
	"quizzq-backend/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		logger.Fatalw("database_init_failed", "error", err.Error())
	}
	logger.Infow("database_ready")

	// stripe-go keys the package-level clients off this once at startup
	stripe.Key = cfg.StripeSecretKey

	var quizGen *ai.QuizService
	if cfg.GeminiAPIKey != "" {
		quizGen, err = ai.NewQuizService(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Fatalw("gemini_init_failed", "error", err.Error())
		}
		defer quizGen.Close()
	} else {
		logger.Warnw("gemini_disabled", "reason", "GEMINI_API_KEY not set")
	}

	entStore := store.NewGorm(db)

	deps := routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Log:       logger,
		Store:     entStore,

		Auth:    authapi.NewHandler(db, cfg, logger),
		Users:   usersapi.NewHandler(db),
		Plans:   plansapi.NewHandler(db, cfg),
		Billing: billingapi.NewHandler(db, cfg),
		Webhook: stripewebhook.New(entStore, plans.NewCatalog(db), stripeapi.Live{}, cfg.StripeWebhookSecret, logger),
		Classes: classesapi.NewHandler(db),
		Quizzes: quizzesapi.NewHandler(db, quizGen, logger),
		Admin:   adminapi.NewHandler(db),
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server_stopped", "error", err.Error())
	}
}
