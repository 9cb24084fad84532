package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/events"
	"staybook/internal/jobs"
	"staybook/internal/middleware"
	"staybook/internal/modules/booking"
	"staybook/internal/modules/catalog"
	"staybook/internal/modules/inventory"
	"staybook/internal/modules/payment"
	"staybook/internal/modules/rating"
	"staybook/internal/modules/reservation"
	"staybook/internal/modules/review"
	"staybook/internal/pkg/cache"
	jwtsvc "staybook/internal/pkg/jwt"
	"staybook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	// Redis is optional: without it the engine runs with no-op events
	// and an uncached catalog.
	var (
		rdb         *redis.Client
		publisher   events.Publisher = events.Nop{}
		invalidator inventory.CacheInvalidator
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		publisher = events.NewRedisPublisher(rdb, log.Printf)
		invalidator = cache.NewInvalidator(rdb)
	}

	bookingRepo := repository.NewBookingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	roomTypeRepo := repository.NewRoomTypeRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	intentRepo := repository.NewPaymentIntentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)
	gateway := payment.NewHTTPGateway(cfg.PaymentAPIURL, cfg.PaymentSecretKey, cfg.GatewayAttempts, log.Printf)

	ledger := inventory.NewService(inventoryRepo, roomTypeRepo, invalidator, cfg.HoldTTL, cfg.RelistOnRefund, log.Printf)
	machine := booking.NewService(bookingRepo, ledger, intentRepo, publisher, log.Printf)
	orchestrator := reservation.NewService(
		ledger, gateway, bookingRepo, intentRepo, machine, roomTypeRepo,
		cfg.Currency, cfg.ConfirmTimeout, cfg.ConfirmPoll, log.Printf,
	)
	aggregator := rating.NewService(reviewRepo, hotelRepo, publisher, log.Printf)
	reviewService := review.NewService(reviewRepo, hotelRepo, bookingRepo, aggregator, log.Printf)
	catalogService := catalog.NewService(hotelRepo, roomTypeRepo, ledger, rdb, cfg.AvailabilityTTL, log.Printf)

	reservationHandler := reservation.NewHandler(orchestrator, log.Printf)
	reviewHandler := review.NewHandler(reviewService)
	catalogHandler := catalog.NewHandler(catalogService)

	c := cron.New()
	if err := jobs.InitCronJobs(c, ledger, cfg.SweepSchedule); err != nil {
		log.Fatalf("cron init failed: %v", err)
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		catalogHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterPublicRoutes(v1)

		// provider callback, shared-token auth
		webhook := v1.Group("/")
		webhook.Use(middleware.WebhookTokenAuth(cfg.WebhookToken))
		reservationHandler.RegisterWebhookRoutes(webhook)

		// user-facing writes
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			reservationHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)

			ops := protected.Group("/")
			ops.Use(middleware.OpsOnly())
			reservationHandler.RegisterOpsRoutes(ops)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
