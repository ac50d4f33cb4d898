package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/TripSphere/config"
	"github.com/Govind-619/TripSphere/controllers"
	"github.com/Govind-619/TripSphere/routes"
	"github.com/Govind-619/TripSphere/services"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogDir); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.LogError("Failed to initialize database: %v", err)
		log.Fatal("Failed to initialize database:", err)
	}

	// Payment provider is optional; without it orders fail with 503 and refunds stay pending
	var provider services.PaymentProvider
	if cfg.PaymentsConfigured() {
		provider = services.NewRazorpayProvider(cfg.RazorpayKey, cfg.RazorpaySecret)
	} else {
		utils.LogWarn("Razorpay credentials not set, payment orders are disabled")
	}
	if cfg.RazorpayWebhookSecret == "" {
		utils.LogWarn("RAZORPAY_WEBHOOK_SECRET not set, every webhook delivery will be rejected")
	}

	var limiter *utils.RateLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = utils.NewRateLimiter(client, cfg.RateLimitPerMinute, time.Minute)
		utils.LogInfo("Rate limiting enabled via Redis at %s (%d req/min)", cfg.RedisAddr, cfg.RateLimitPerMinute)
	}

	var notifier services.Notifier
	if mailNotifier := services.NewMailNotifier(utils.NewMailer(utils.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})); mailNotifier != nil {
		notifier = mailNotifier
	}

	coupons := services.NewCouponService(db)
	bookings := services.NewBookingService(db, coupons)
	payments := services.NewPaymentService(db, provider, cfg.Currency)
	webhooks := services.NewWebhookService(db, cfg.RazorpayWebhookSecret, bookings, coupons, notifier)
	refunds := services.NewRefundService(db, provider, bookings)

	router := routes.SetupRouter(cfg, routes.Handlers{
		Bookings: controllers.NewBookingController(bookings),
		Payments: controllers.NewPaymentController(payments, webhooks),
		Refunds:  controllers.NewRefundController(refunds),
		Coupons:  controllers.NewCouponController(coupons),
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogInfo("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Error starting server: %v", err)
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Server shutdown failed: %v", err)
	}
}
