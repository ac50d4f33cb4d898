package routes

import (
	"github.com/Govind-619/TripSphere/config"
	"github.com/Govind-619/TripSphere/controllers"
	"github.com/Govind-619/TripSphere/middleware"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the controllers the router mounts
type Handlers struct {
	Bookings *controllers.BookingController
	Payments *controllers.PaymentController
	Refunds  *controllers.RefundController
	Coupons  *controllers.CouponController
}

// SetupRouter builds the gin engine with global middleware and all API routes.
// limiter may be nil, which disables rate limiting.
func SetupRouter(cfg *config.Config, h Handlers, limiter *utils.RateLimiter) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "OK", gin.H{"app": utils.AppName, "version": utils.APIVersion})
	})

	v1 := router.Group("/" + utils.APIVersion)

	// Provider callbacks are authenticated by signature, not by token.
	v1.POST("/payments/webhook", h.Payments.Webhook)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret), utils.RateLimitMiddleware(limiter))

	initBookingRoutes(authed, h)
	initAdminRoutes(authed, h)

	utils.LogInfo("Routes registered")
	return router
}
