package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment status constants
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
)

// PaymentProviderRazorpay is the only provider wired today.
const PaymentProviderRazorpay = "razorpay"

// Payment is one attempt to collect money for a booking.
type Payment struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	BookingID         uint            `json:"booking_id" gorm:"index;not null"`
	UserID            uint            `json:"user_id" gorm:"index;not null"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency          string          `json:"currency" gorm:"type:varchar(3);not null"`
	Provider          string          `json:"provider" gorm:"type:varchar(32);not null"`
	ProviderOrderID   string          `json:"provider_order_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	ProviderPaymentID *string         `json:"provider_payment_id,omitempty" gorm:"type:varchar(64);index"`
	Status            string          `json:"status" gorm:"type:varchar(16);index;not null"`
	IdempotencyKey    *string         `json:"idempotency_key,omitempty" gorm:"type:varchar(128);uniqueIndex"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Refund status constants
const (
	RefundStatusPending   = "PENDING"
	RefundStatusProcessed = "PROCESSED"
)

// Refund is one refund attempt against a succeeded payment. It stays PENDING
// until the provider acknowledges it.
type Refund struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	PaymentID     uint            `json:"payment_id" gorm:"index;not null"`
	BookingID     uint            `json:"booking_id" gorm:"index;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Reason        string          `json:"reason,omitempty" gorm:"type:text"`
	ProviderRefID *string         `json:"provider_ref_id,omitempty" gorm:"type:varchar(64)"`
	Status        string          `json:"status" gorm:"type:varchar(16);index;not null"`
	LastError     string          `json:"last_error,omitempty" gorm:"type:text"`

	// Set while a provider call is in flight, cleared when the attempt fails
	AttemptStartedAt *time.Time `json:"attempt_started_at,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Transaction types
const (
	TransactionTypeCapture = "CAPTURE"
	TransactionTypeRefund  = "REFUND"
)

// Transaction is an informational, append-only ledger of provider money movement.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	PaymentID   uint            `json:"payment_id" gorm:"index;not null"`
	RefundID    *uint           `json:"refund_id,omitempty" gorm:"index"`
	Type        string          `json:"type" gorm:"type:varchar(16);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency    string          `json:"currency" gorm:"type:varchar(3);not null"`
	ProviderRef string          `json:"provider_ref" gorm:"type:varchar(64)"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentCallback keeps every verified provider webhook as received.
type PaymentCallback struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Provider  string         `json:"provider" gorm:"type:varchar(32);not null"`
	EventID   string         `json:"event_id" gorm:"type:varchar(64);index"`
	EventName string         `json:"event_name" gorm:"type:varchar(64);index"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
