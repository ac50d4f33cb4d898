package controllers

import (
	"encoding/json"
	"time"

	"github.com/Govind-619/TripSphere/services"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TravelerRequest is one traveler in a new booking
type TravelerRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Age         int    `json:"age" binding:"gte=0,lte=120"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	IDProof     string `json:"id_proof"`
}

// AddonRequest is an optional priced extra
type AddonRequest struct {
	Name     string          `json:"name" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity" binding:"required,gte=1"`
}

// CreateBookingRequest represents the request body for opening a booking
type CreateBookingRequest struct {
	PackageID       uint              `json:"package_id" binding:"required"`
	VariantID       uint              `json:"variant_id" binding:"required"`
	ScheduleID      uint              `json:"schedule_id" binding:"required"`
	Travelers       []TravelerRequest `json:"travelers" binding:"required,min=1,dive"`
	Addons          []AddonRequest    `json:"addons" binding:"dive"`
	CouponCode      string            `json:"coupon_code"`
	SpecialRequests string            `json:"special_requests"`
	ContactEmail    string            `json:"contact_email" binding:"omitempty,email"`
}

// UpdateStepRequest represents the request body for wizard progress
type UpdateStepRequest struct {
	Step            int             `json:"step" binding:"required,gte=1"`
	StepData        json.RawMessage `json:"step_data"`
	SpecialRequests *string         `json:"special_requests"`
}

// ApplyCouponRequest represents the request body for applying a coupon
type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code" binding:"required"`
}

// BookingController serves the traveler facing booking endpoints
type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// CreateBooking opens a DRAFT booking and holds its seats
func (bc *BookingController) CreateBooking(c *gin.Context) {
	utils.LogInfo("CreateBooking called")

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid booking request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	input := services.CreateBookingInput{
		PackageID:       req.PackageID,
		VariantID:       req.VariantID,
		ScheduleID:      req.ScheduleID,
		CouponCode:      req.CouponCode,
		SpecialRequests: req.SpecialRequests,
		ContactEmail:    req.ContactEmail,
	}
	for _, t := range req.Travelers {
		traveler := services.TravelerInput{
			FullName: t.FullName,
			Age:      t.Age,
			Gender:   t.Gender,
			IDProof:  t.IDProof,
		}
		if t.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", t.DateOfBirth)
			if err != nil {
				utils.BadRequest(c, "Invalid date_of_birth, expected YYYY-MM-DD", nil)
				return
			}
			traveler.DateOfBirth = &dob
		}
		input.Travelers = append(input.Travelers, traveler)
	}
	for _, a := range req.Addons {
		input.Addons = append(input.Addons, services.AddonInput{Name: a.Name, Amount: a.Amount, Quantity: a.Quantity})
	}

	booking, err := bc.bookings.Create(c.Request.Context(), userID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, utils.MsgBookingCreated, gin.H{"booking": booking})
}

// ListBookings returns the caller's bookings, optionally filtered by status
func (bc *BookingController) ListBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)
	bookings, total, err := bc.bookings.ListForUser(c.Request.Context(), userID, c.Query("status"), pagination.Limit, pagination.Offset)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	pagination.SetTotal(total)

	utils.LogDebug("Listed %d of %d bookings for user ID: %d", len(bookings), total, userID)
	utils.SendPaginatedResponse(c, "Bookings retrieved successfully", bookings, pagination)
}

// GetBooking returns one of the caller's bookings
func (bc *BookingController) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.bookings.Get(c.Request.Context(), bookingID, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Booking retrieved successfully", gin.H{"booking": booking})
}

// UpdateBookingStep stores wizard progress on a DRAFT booking
func (bc *BookingController) UpdateBookingStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid step update for booking %d: %v", bookingID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	booking, err := bc.bookings.UpdateStep(c.Request.Context(), bookingID, userID, services.UpdateStepInput{
		Step:            req.Step,
		StepData:        req.StepData,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgBookingUpdated, gin.H{"booking": booking})
}

// ApplyCoupon prices a coupon against a DRAFT booking
func (bc *BookingController) ApplyCoupon(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid apply coupon request for booking %d: %v", bookingID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	utils.LogInfo("Attempting to apply coupon code: %s to booking %d for user ID: %d", req.CouponCode, bookingID, userID)

	booking, err := bc.bookings.ApplyCoupon(c.Request.Context(), bookingID, userID, req.CouponCode)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, utils.MsgCouponApplied, gin.H{
		"booking":         booking,
		"coupon_code":     booking.CouponCode,
		"discount_amount": booking.DiscountAmount,
		"final_amount":    booking.FinalAmount,
	})
}

// ConfirmBooking locks the price and moves the booking to PENDING_PAYMENT
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.bookings.Confirm(c.Request.Context(), bookingID, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgBookingConfirmed, gin.H{"booking": booking})
}

// CancelBooking abandons an unpaid booking
func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.bookings.Cancel(c.Request.Context(), bookingID, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgBookingCancelled, gin.H{"booking": booking})
}

// CompleteBooking marks a travelled booking as COMPLETED (admin)
func (bc *BookingController) CompleteBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.bookings.Complete(c.Request.Context(), bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Booking marked as completed", gin.H{"booking": booking})
}
