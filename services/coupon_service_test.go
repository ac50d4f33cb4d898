package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCoupon(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	limit := func(n int) *int { return &n }
	base := func() models.Coupon {
		return models.Coupon{
			ID:            7,
			Code:          "SAVE10",
			DiscountType:  models.CouponTypePercent,
			DiscountValue: dec("10"),
			ValidFrom:     now.Add(-time.Hour),
			ValidTo:       now.Add(time.Hour),
			IsActive:      true,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*models.Coupon)
		amount   string
		applied  bool
		discount string
		reason   string
	}{
		{
			name:     "percent discount",
			amount:   "10000",
			applied:  true,
			discount: "1000",
		},
		{
			name: "percent capped by max discount",
			mutate: func(c *models.Coupon) {
				c.MaxDiscount = decimal.NewNullDecimal(dec("500"))
			},
			amount:   "10000",
			applied:  true,
			discount: "500",
		},
		{
			name: "fixed discount clamped to order amount",
			mutate: func(c *models.Coupon) {
				c.DiscountType = models.CouponTypeFixed
				c.DiscountValue = dec("2500")
			},
			amount:   "1800",
			applied:  true,
			discount: "1800",
		},
		{
			name: "order exactly at minimum qualifies",
			mutate: func(c *models.Coupon) {
				c.MinOrderAmount = decimal.NewNullDecimal(dec("5000"))
			},
			amount:   "5000",
			applied:  true,
			discount: "500",
		},
		{
			name: "order below minimum",
			mutate: func(c *models.Coupon) {
				c.MinOrderAmount = decimal.NewNullDecimal(dec("5000"))
			},
			amount: "4999.99",
			reason: "Minimum order amount is 5000.00",
		},
		{
			name:   "inactive",
			mutate: func(c *models.Coupon) { c.IsActive = false },
			amount: "10000",
			reason: ReasonCouponInvalid,
		},
		{
			name:   "not yet valid",
			mutate: func(c *models.Coupon) { c.ValidFrom = now.Add(time.Minute) },
			amount: "10000",
			reason: ReasonCouponExpired,
		},
		{
			name:   "expired",
			mutate: func(c *models.Coupon) { c.ValidTo = now.Add(-time.Minute) },
			amount: "10000",
			reason: ReasonCouponExpired,
		},
		{
			name: "usage limit reached",
			mutate: func(c *models.Coupon) {
				c.UsageLimit = limit(3)
				c.UsedCount = 3
			},
			amount: "10000",
			reason: ReasonCouponUsageLimit,
		},
		{
			name: "one use left",
			mutate: func(c *models.Coupon) {
				c.UsageLimit = limit(3)
				c.UsedCount = 2
			},
			amount:   "10000",
			applied:  true,
			discount: "1000",
		},
		{
			name:   "unknown discount type",
			mutate: func(c *models.Coupon) { c.DiscountType = "BOGO" },
			amount: "10000",
			reason: ReasonCouponInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := base()
			if tt.mutate != nil {
				tt.mutate(&coupon)
			}

			result := EvaluateCoupon(&coupon, dec(tt.amount), now)

			assert.Equal(t, tt.applied, result.Applied)
			if tt.applied {
				assert.True(t, dec(tt.discount).Equal(result.DiscountAmount), "discount %s", result.DiscountAmount)
				assert.Equal(t, uint(7), result.CouponID)
				assert.Empty(t, result.Reason)
			} else {
				assert.Equal(t, tt.reason, result.Reason)
				assert.True(t, result.DiscountAmount.IsZero())
			}
		})
	}
}

func TestEvaluateCouponNil(t *testing.T) {
	result := EvaluateCoupon(nil, dec("100"), time.Now())
	assert.False(t, result.Applied)
	assert.Equal(t, ReasonCouponInvalid, result.Reason)
}

func TestCouponValidateNormalizesCode(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, nil)
	svc := NewCouponService(db)

	result, err := svc.Validate(context.Background(), "  save10 ", 1, dec("9000"))
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "SAVE10", result.Code)
	assert.True(t, dec("900").Equal(result.DiscountAmount))

	result, err = svc.Validate(context.Background(), "NOPE", 1, dec("9000"))
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, ReasonCouponInvalid, result.Reason)
}

func TestCouponRecordUsageIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, nil)
	svc := NewCouponService(db)
	ctx := context.Background()

	usage := UsageRecord{CouponID: coupon.ID, UserID: 4, BookingID: 11, DiscountAmount: dec("900")}

	recorded, err := svc.RecordUsage(ctx, usage)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = svc.RecordUsage(ctx, usage)
	require.NoError(t, err)
	assert.False(t, recorded)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)

	var rows int64
	require.NoError(t, db.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestCouponRecordUsageOverLimitKeepsLedger(t *testing.T) {
	db := newTestDB(t)
	one := 1
	coupon := seedCoupon(t, db, func(c *models.Coupon) {
		c.UsageLimit = &one
	})
	svc := NewCouponService(db)
	ctx := context.Background()

	_, err := svc.RecordUsage(ctx, UsageRecord{CouponID: coupon.ID, UserID: 1, BookingID: 1, DiscountAmount: dec("10")})
	require.NoError(t, err)
	recorded, err := svc.RecordUsage(ctx, UsageRecord{CouponID: coupon.ID, UserID: 2, BookingID: 2, DiscountAmount: dec("10")})
	require.NoError(t, err)
	assert.True(t, recorded)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)

	var rows int64
	require.NoError(t, db.Model(&models.CouponUsage{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestCouponCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	ctx := context.Background()
	from := time.Now()

	coupon, err := svc.Create(ctx, CreateCouponInput{
		Code:          " monsoon25 ",
		DiscountType:  "percent",
		DiscountValue: dec("25"),
		MaxDiscount:   decimal.NewNullDecimal(dec("2000")),
		ValidFrom:     from,
		ValidTo:       from.AddDate(0, 1, 0),
		IsActive:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "MONSOON25", coupon.Code)
	assert.Equal(t, models.CouponTypePercent, coupon.DiscountType)

	_, err = svc.Create(ctx, CreateCouponInput{
		Code:          "MONSOON25",
		DiscountType:  "FIXED",
		DiscountValue: dec("100"),
		ValidFrom:     from,
		ValidTo:       from.AddDate(0, 1, 0),
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Equal(t, http.StatusConflict, utils.GetAppError(err).Code)

	_, err = svc.Create(ctx, CreateCouponInput{
		Code:          "FRACTION",
		DiscountType:  "FIXED",
		DiscountValue: dec("99.999"),
		ValidFrom:     from,
		ValidTo:       from.AddDate(0, 1, 0),
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.Create(ctx, CreateCouponInput{
		Code:          "TOOMUCH",
		DiscountType:  "PERCENT",
		DiscountValue: dec("150"),
		ValidFrom:     from,
		ValidTo:       from.AddDate(0, 1, 0),
	})
	require.Error(t, err)

	coupons, total, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, coupons, 1)
}
