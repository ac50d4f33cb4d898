package utils

// Application constants
const (
	// Application name
	AppName = "TripSphere"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default database settings
	DefaultDBHost     = "localhost"
	DefaultDBPort     = "5432"
	DefaultDBName     = "tripsphere"
	DefaultDBUser     = "postgres"
	DefaultDBPassword = "postgres"

	// Default log directory
	DefaultLogDir = "logs"

	// Currency used when a payment order does not name one
	DefaultCurrency = "INR"

	// Requests per minute per client on rate limited routes
	DefaultRateLimitPerMinute = 30

	// Default SMTP submission port
	DefaultSMTPPort = 587

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Header carrying the provider's webhook HMAC
	RazorpaySignatureHeader = "X-Razorpay-Signature"

	// Header carrying the provider's webhook delivery id
	RazorpayEventIDHeader = "X-Razorpay-Event-Id"

	// Header a client may use instead of the idempotency_key body field
	IdempotencyKeyHeader = "Idempotency-Key"
)

// Error messages
const (
	ErrUnauthorized       = "Unauthorized access"
	ErrForbidden          = "Access forbidden"
	ErrInvalidToken       = "Invalid or expired token"
	ErrInternalServer     = "Something went wrong, please try again later"
	ErrServiceUnavailable = "Service unavailable"
	ErrTooManyRequests    = "Too many requests, please slow down"
)

// Success messages
const (
	MsgBookingCreated   = "Booking created successfully"
	MsgBookingUpdated   = "Booking updated successfully"
	MsgCouponApplied    = "Coupon applied successfully"
	MsgBookingConfirmed = "Booking is ready for payment"
	MsgBookingCancelled = "Booking cancelled successfully"
	MsgOrderCreated     = "Payment order created successfully"
	MsgRefundInitiated  = "Refund initiated"
	MsgRefundPending    = "Refund recorded and awaiting provider confirmation"
)
