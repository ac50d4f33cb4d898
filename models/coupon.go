package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon discount types
const (
	CouponTypePercent = "PERCENT"
	CouponTypeFixed   = "FIXED"
)

type Coupon struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	Code           string              `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountType   string              `gorm:"type:varchar(16);not null" json:"discount_type"`
	DiscountValue  decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinOrderAmount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"min_order_amount"`
	MaxDiscount    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_discount"`
	UsageLimit     *int                `json:"usage_limit"`
	UsedCount      int                 `gorm:"not null" json:"used_count"`
	ValidFrom      time.Time           `json:"valid_from"`
	ValidTo        time.Time           `json:"valid_to"`
	IsActive       bool                `json:"is_active"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

// CouponUsage is the append-only usage ledger. One row per (coupon, booking).
type CouponUsage struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CouponID       uint            `gorm:"not null;uniqueIndex:idx_coupon_usages_coupon_booking" json:"coupon_id"`
	BookingID      uint            `gorm:"not null;uniqueIndex:idx_coupon_usages_coupon_booking" json:"booking_id"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}
