// Package routes wires repositories, services and handlers and defines
// the API surface.
package routes

import (
	"context"
	"log"
	"time"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/config"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/handlers"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/middleware"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/auth"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/dispatch"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/notify"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/provider"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/reporting"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/storage"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/timeout"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/verification"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes and their dependencies.
func SetupRoutes(app *fiber.App) {
	paymentRepo := repositories.NewPaymentRepository(repositories.DB, repositories.CacheService)
	settingsRepo := repositories.NewSettingsRepository(repositories.DB, repositories.CacheService, repositories.Defaults{
		Prices:      config.DefaultPrices(),
		Links:       config.DefaultLinks(),
		PaymentInfo: config.DefaultPaymentInfo(),
	})

	notifier := buildNotifier()
	blobs := buildBlobStore()

	providerClient := provider.NewClient(provider.Config{
		KeyID:         config.GetEnv("PROVIDER_KEY_ID", ""),
		KeySecret:     config.GetEnv("PROVIDER_KEY_SECRET", ""),
		WebhookSecret: config.GetEnv("PROVIDER_WEBHOOK_SECRET", ""),
		BaseURL:       config.GetEnv("PROVIDER_BASE_URL", ""),
	})

	dispatcher := dispatch.NewService(paymentRepo, settingsRepo, notifier)

	adminID := config.GetInt64Env("ADMIN_CHAT_ID", 0)
	var verifier verification.Service
	scheduler := timeout.NewScheduler(func(ctx context.Context, id string) {
		if _, err := verifier.Expire(ctx, id); err != nil {
			log.Printf("expiry of payment %s failed: %v", id, err)
		}
	})
	verifier = verification.NewService(verification.Config{
		AdminID:       adminID,
		UPITimeout:    config.GetDurationEnv("UPI_TIMEOUT", 10*time.Minute),
		ManualTimeout: config.GetDurationEnv("MANUAL_TIMEOUT", 30*time.Minute),
	}, paymentRepo, settingsRepo, providerClient, dispatcher, scheduler, notifier)

	authService := auth.NewService(
		adminID,
		config.GetEnv("ADMIN_PASSWORD_HASH", ""),
		config.GetEnv("JWT_SECRET", "paybot"),
		config.GetDurationEnv("JWT_TTL", 12*time.Hour),
	)

	reportService := reporting.NewService(paymentRepo)

	paymentHandler := handlers.NewPaymentHandler(verifier, settingsRepo, notifier, blobs)
	webhookHandler := handlers.NewWebhookHandler(verifier, providerClient.WebhookSecret())
	adminHandler := handlers.NewAdminHandler(verifier, reportService, paymentRepo, settingsRepo, notifier)
	authHandler := handlers.NewAuthHandler(authService)

	// Provider webhook, outside the /api group like the provider expects
	app.Post("/payment_webhook", webhookHandler.Handle)

	api := app.Group("/api")
	api.Get("/bundles", paymentHandler.GetBundles)
	api.Post("/payments", paymentHandler.CreatePayment)
	api.Post("/payments/proof", paymentHandler.UploadProof)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	admin := app.Group("/api/admin")
	admin.Post("/login", authHandler.Login)

	protected := admin.Use(authMiddleware.Handler)
	protected.Post("/payments/:id/approve", adminHandler.ApprovePayment)
	protected.Post("/payments/:id/decline", adminHandler.DeclinePayment)
	protected.Post("/payments/:id/dispatch", adminHandler.DispatchPayment)
	protected.Get("/payments", adminHandler.ListPayments)
	protected.Get("/income", adminHandler.Income)
	protected.Get("/insights", adminHandler.Insights)
	protected.Put("/settings/links", adminHandler.UpdateLinks)
	protected.Put("/settings/payment-info", adminHandler.UpdatePaymentInfo)
	protected.Put("/settings/prices", adminHandler.UpdatePrices)
	protected.Post("/broadcast", adminHandler.Broadcast)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Payment intake API",
			"version": "1.0.0",
		})
	})
}

func buildNotifier() notify.Notifier {
	token := config.GetEnv("BOT_TOKEN", "")
	if token == "" {
		log.Println("BOT_TOKEN not set, using logging notifier")
		return notify.NewNoop()
	}
	return notify.NewTelegram(token)
}

func buildBlobStore() storage.BlobStore {
	bucket := config.GetEnv("S3_BUCKET", "")
	if bucket == "" {
		store, err := storage.NewLocalStore(config.GetEnv("PROOF_DIR", "./data/proofs"))
		if err != nil {
			log.Fatalf("failed to init local proof store: %v", err)
		}
		return store
	}

	store, err := storage.NewS3Store(storage.S3Config{
		AccessKey: config.GetEnv("S3_ACCESS_KEY", ""),
		SecretKey: config.GetEnv("S3_SECRET_KEY", ""),
		Bucket:    bucket,
		Region:    config.GetEnv("S3_REGION", "us-east-1"),
		Endpoint:  config.GetEnv("S3_ENDPOINT", ""),
		Prefix:    "proofs",
	})
	if err != nil {
		log.Fatalf("failed to init S3 proof store: %v", err)
	}
	return store
}
