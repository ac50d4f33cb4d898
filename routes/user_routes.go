package routes

import (
	"github.com/gin-gonic/gin"
)

// initBookingRoutes registers the traveler facing booking and payment routes
func initBookingRoutes(router *gin.RouterGroup, h Handlers) {
	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.Bookings.CreateBooking)
		bookings.GET("", h.Bookings.ListBookings)
		bookings.GET("/:id", h.Bookings.GetBooking)
		bookings.PATCH("/:id/step", h.Bookings.UpdateBookingStep)
		bookings.POST("/:id/apply-coupon", h.Bookings.ApplyCoupon)
		bookings.POST("/:id/confirm", h.Bookings.ConfirmBooking)
		bookings.POST("/:id/cancel", h.Bookings.CancelBooking)
	}

	payments := router.Group("/payments")
	{
		payments.POST("/orders", h.Payments.CreateOrder)
		payments.GET("/:id", h.Payments.GetPayment)
	}
}
