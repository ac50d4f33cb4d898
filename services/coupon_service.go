package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User-facing coupon rejection reasons
const (
	ReasonCouponInvalid    = "Invalid coupon"
	ReasonCouponExpired    = "Coupon expired or not yet valid"
	ReasonCouponUsageLimit = "Coupon usage limit reached"
)

// CouponResult is the outcome of pricing a coupon against an order amount.
type CouponResult struct {
	Applied        bool
	CouponID       uint
	Code           string
	DiscountAmount decimal.Decimal
	Reason         string
}

// CouponService validates and prices discount codes and keeps the usage ledger.
type CouponService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db, now: time.Now}
}

// NormalizeCouponCode is the canonical form codes are stored and looked up in.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluateCoupon checks coupon against orderAmount at now. The first failing
// rule decides the reason.
func EvaluateCoupon(coupon *models.Coupon, orderAmount decimal.Decimal, now time.Time) CouponResult {
	if coupon == nil || !coupon.IsActive || coupon.DeletedAt.Valid {
		return CouponResult{Reason: ReasonCouponInvalid}
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
		return CouponResult{Reason: ReasonCouponExpired}
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return CouponResult{Reason: ReasonCouponUsageLimit}
	}

	minOrder := decimal.Zero
	if coupon.MinOrderAmount.Valid {
		minOrder = coupon.MinOrderAmount.Decimal
	}
	if orderAmount.LessThan(minOrder) {
		return CouponResult{Reason: fmt.Sprintf("Minimum order amount is %s", utils.FormatAmount(minOrder))}
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.CouponTypePercent:
		discount = utils.Percent(orderAmount, coupon.DiscountValue)
		if coupon.MaxDiscount.Valid && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	case models.CouponTypeFixed:
		discount = coupon.DiscountValue
	default:
		return CouponResult{Reason: ReasonCouponInvalid}
	}

	// A coupon never takes the order below zero.
	discount = decimal.Min(discount, orderAmount)
	if !discount.IsPositive() {
		return CouponResult{Reason: ReasonCouponInvalid}
	}

	return CouponResult{
		Applied:        true,
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountAmount: discount,
	}
}

// Validate prices code for userID against orderAmount without side effects.
func (s *CouponService) Validate(ctx context.Context, code string, userID uint, orderAmount decimal.Decimal) (CouponResult, error) {
	return s.validate(s.db.WithContext(ctx), code, userID, orderAmount)
}

func (s *CouponService) validate(tx *gorm.DB, code string, userID uint, orderAmount decimal.Decimal) (CouponResult, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return CouponResult{Reason: ReasonCouponInvalid}, nil
	}

	var coupon models.Coupon
	if err := tx.Where("code = ?", normalized).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogInfo("Unknown coupon code %s tried by user ID: %d", normalized, userID)
			return CouponResult{Reason: ReasonCouponInvalid}, nil
		}
		return CouponResult{}, utils.WrapError(err, "load coupon")
	}

	result := EvaluateCoupon(&coupon, orderAmount, s.now())
	if result.Applied {
		utils.LogInfo("Coupon %s priced at %s for user ID: %d on amount %s",
			coupon.Code, utils.FormatAmount(result.DiscountAmount), userID, utils.FormatAmount(orderAmount))
	} else {
		utils.LogInfo("Coupon %s rejected for user ID: %d: %s", coupon.Code, userID, result.Reason)
	}
	return result, nil
}

// UsageRecord is one confirmed use of a coupon by a paid booking.
type UsageRecord struct {
	CouponID       uint
	UserID         uint
	BookingID      uint
	DiscountAmount decimal.Decimal
}

// RecordUsage appends the usage row and bumps the coupon's used count. It is
// idempotent per (coupon, booking): the second call returns false and changes nothing.
func (s *CouponService) RecordUsage(ctx context.Context, usage UsageRecord) (bool, error) {
	var recorded bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		recorded, err = s.recordUsage(tx, usage)
		return err
	})
	return recorded, err
}

func (s *CouponService) recordUsage(tx *gorm.DB, usage UsageRecord) (bool, error) {
	row := models.CouponUsage{
		CouponID:       usage.CouponID,
		UserID:         usage.UserID,
		BookingID:      usage.BookingID,
		DiscountAmount: usage.DiscountAmount,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coupon_id"}, {Name: "booking_id"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return false, utils.WrapError(res.Error, "insert coupon usage")
	}
	if res.RowsAffected == 0 {
		utils.LogInfo("Coupon %d usage for booking %d already recorded", usage.CouponID, usage.BookingID)
		return false, nil
	}

	upd := tx.Unscoped().Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", usage.CouponID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if upd.Error != nil {
		return false, utils.WrapError(upd.Error, "increment coupon usage")
	}
	if upd.RowsAffected == 0 {
		// Two drafts can hold the last use; the paid one still gets its discount.
		utils.LogWarn("Coupon %d is over its usage limit after booking %d was paid", usage.CouponID, usage.BookingID)
	}

	utils.LogInfo("Recorded coupon %d usage for booking %d (user ID: %d)", usage.CouponID, usage.BookingID, usage.UserID)
	return true, nil
}

// CreateCouponInput is the admin payload for a new coupon.
type CreateCouponInput struct {
	Code           string
	DiscountType   string
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.NullDecimal
	MaxDiscount    decimal.NullDecimal
	UsageLimit     *int
	ValidFrom      time.Time
	ValidTo        time.Time
	IsActive       bool
}

// Create stores a new coupon under its normalized code.
func (s *CouponService) Create(ctx context.Context, in CreateCouponInput) (*models.Coupon, error) {
	code := NormalizeCouponCode(in.Code)
	discountType := strings.ToUpper(strings.TrimSpace(in.DiscountType))

	switch {
	case code == "":
		return nil, utils.ValidationFailed("Coupon code is required")
	case discountType != models.CouponTypePercent && discountType != models.CouponTypeFixed:
		return nil, utils.ValidationFailed("Discount type must be PERCENT or FIXED")
	case !in.DiscountValue.IsPositive():
		return nil, utils.ValidationFailed("Discount value must be greater than 0")
	case discountType == models.CouponTypePercent && in.DiscountValue.GreaterThan(decimal.NewFromInt(100)):
		return nil, utils.ValidationFailed("Percent discount cannot exceed 100")
	case !in.ValidTo.After(in.ValidFrom):
		return nil, utils.ValidationFailed("valid_to must be after valid_from")
	case in.UsageLimit != nil && *in.UsageLimit < 1:
		return nil, utils.ValidationFailed("Usage limit must be at least 1")
	case !utils.HasMinorPrecision(in.DiscountValue),
		in.MinOrderAmount.Valid && !utils.HasMinorPrecision(in.MinOrderAmount.Decimal),
		in.MaxDiscount.Valid && !utils.HasMinorPrecision(in.MaxDiscount.Decimal):
		return nil, utils.ValidationFailed("Coupon amounts cannot have more than two decimal places")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Unscoped().Model(&models.Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, utils.WrapError(err, "check coupon code")
	}
	if count > 0 {
		return nil, utils.ConflictError("Coupon code already exists")
	}

	coupon := models.Coupon{
		Code:           code,
		DiscountType:   discountType,
		DiscountValue:  in.DiscountValue,
		MinOrderAmount: in.MinOrderAmount,
		MaxDiscount:    in.MaxDiscount,
		UsageLimit:     in.UsageLimit,
		ValidFrom:      in.ValidFrom,
		ValidTo:        in.ValidTo,
		IsActive:       in.IsActive,
	}
	if err := db.Create(&coupon).Error; err != nil {
		return nil, utils.WrapError(err, "create coupon")
	}
	utils.LogInfo("Created coupon %s (%s %s)", coupon.Code, coupon.DiscountType, coupon.DiscountValue)
	return &coupon, nil
}

// List returns coupons newest first.
func (s *CouponService) List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	var coupons []models.Coupon
	var total int64
	db := s.db.WithContext(ctx).Model(&models.Coupon{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}
