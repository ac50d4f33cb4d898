package routes

import (
	"github.com/Govind-619/TripSphere/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes registers operator routes. The caller group is already authenticated.
func initAdminRoutes(router *gin.RouterGroup, h Handlers) {
	router.POST("/payments/refunds", middleware.AdminMiddleware(), h.Refunds.InitiateRefund)

	admin := router.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		// Coupon management
		admin.POST("/coupons", h.Coupons.CreateCoupon)
		admin.GET("/coupons", h.Coupons.ListCoupons)

		// Booking lifecycle
		admin.POST("/bookings/:id/complete", h.Bookings.CompleteBooking)

		// Refund operations
		admin.GET("/refunds/pending", h.Refunds.ListPendingRefunds)
		admin.GET("/refunds/pending/export", h.Refunds.ExportPendingRefunds)
		admin.POST("/refunds/:id/retry", h.Refunds.RetryRefund)
	}
}
