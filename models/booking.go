package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking status constants
const (
	BookingStatusDraft          = "DRAFT"
	BookingStatusPendingPayment = "PENDING_PAYMENT"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCompleted      = "COMPLETED"
	BookingStatusCancelled      = "CANCELLED"
	BookingStatusRefunded       = "REFUNDED"
)

// Booking is one traveler party's reservation against a package variant and a
// scheduled departure. FinalAmount is always TotalAmount - DiscountAmount and
// CouponID is set only while DiscountAmount is positive.
type Booking struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	PackageID       uint            `gorm:"index;not null" json:"package_id"`
	VariantID       uint            `gorm:"not null" json:"variant_id"`
	ScheduleID      uint            `gorm:"index;not null" json:"schedule_id"`
	TravelerCount   int             `gorm:"not null" json:"traveler_count"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	FinalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_amount"`
	Status          string          `gorm:"type:varchar(32);index;not null" json:"status"`
	BookingStep     int             `gorm:"not null" json:"booking_step"`
	StepData        datatypes.JSON  `json:"step_data,omitempty"`
	CouponID        *uint           `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode      string          `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	SpecialRequests string          `gorm:"type:text" json:"special_requests,omitempty"`
	ContactEmail    string          `gorm:"type:varchar(255)" json:"contact_email,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	Travelers []Traveler     `gorm:"foreignKey:BookingID" json:"travelers,omitempty"`
	Addons    []BookingAddon `gorm:"foreignKey:BookingID" json:"addons,omitempty"`
}

// Traveler is attached to a booking at creation time and never updated.
type Traveler struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BookingID   uint       `gorm:"index;not null" json:"booking_id"`
	FullName    string     `gorm:"type:varchar(150);not null" json:"full_name"`
	Age         int        `json:"age,omitempty"`
	Gender      string     `gorm:"type:varchar(16)" json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	IDProof     string     `gorm:"type:varchar(64)" json:"id_proof,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BookingAddon is an optional priced line item.
type BookingAddon struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	Name      string          `gorm:"type:varchar(120);not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// LineTotal returns Amount * Quantity.
func (a BookingAddon) LineTotal() decimal.Decimal {
	return a.Amount.Mul(decimal.NewFromInt(int64(a.Quantity)))
}
