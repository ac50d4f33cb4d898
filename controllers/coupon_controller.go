package controllers

import (
	"time"

	"github.com/Govind-619/TripSphere/services"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest represents the request body for creating a coupon
type CreateCouponRequest struct {
	Code           string              `json:"code" binding:"required,max=64"`
	DiscountType   string              `json:"discount_type" binding:"required,oneof=PERCENT FIXED percent fixed"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	MinOrderAmount decimal.NullDecimal `json:"min_order_amount"`
	MaxDiscount    decimal.NullDecimal `json:"max_discount"`
	UsageLimit     *int                `json:"usage_limit"`
	ValidFrom      time.Time           `json:"valid_from" binding:"required"`
	ValidTo        time.Time           `json:"valid_to" binding:"required"`
	IsActive       *bool               `json:"is_active"`
}

// CouponController serves the admin coupon catalogue
type CouponController struct {
	coupons *services.CouponService
}

func NewCouponController(coupons *services.CouponService) *CouponController {
	return &CouponController{coupons: coupons}
}

// CreateCoupon adds a coupon. New coupons are active unless is_active is false.
func (cc *CouponController) CreateCoupon(c *gin.Context) {
	utils.LogInfo("CreateCoupon called")

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid coupon creation request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	coupon, err := cc.coupons.Create(c.Request.Context(), services.CreateCouponInput{
		Code:           req.Code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		UsageLimit:     req.UsageLimit,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		IsActive:       active,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Coupon created successfully", gin.H{"coupon": coupon})
}

// ListCoupons returns coupons newest first
func (cc *CouponController) ListCoupons(c *gin.Context) {
	pagination := utils.NewPagination(c)
	coupons, total, err := cc.coupons.List(c.Request.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	pagination.SetTotal(total)
	utils.SendPaginatedResponse(c, "Coupons retrieved successfully", coupons, pagination)
}
