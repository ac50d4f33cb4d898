package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TravelerInput describes one member of the traveler party.
type TravelerInput struct {
	FullName    string
	Age         int
	Gender      string
	DateOfBirth *time.Time
	IDProof     string
}

// AddonInput is a priced extra requested with the booking.
type AddonInput struct {
	Name     string
	Amount   decimal.Decimal
	Quantity int
}

// CreateBookingInput is everything needed to open a DRAFT booking.
type CreateBookingInput struct {
	PackageID       uint
	VariantID       uint
	ScheduleID      uint
	Travelers       []TravelerInput
	Addons          []AddonInput
	CouponCode      string
	SpecialRequests string
	ContactEmail    string
}

func (in CreateBookingInput) validate() error {
	if in.PackageID == 0 || in.VariantID == 0 || in.ScheduleID == 0 {
		return utils.ValidationFailed("package_id, variant_id and schedule_id are required")
	}
	if len(in.Travelers) == 0 {
		return utils.ValidationFailed("At least one traveler is required")
	}
	for i, t := range in.Travelers {
		if ok, msg := utils.ValidateTravelerName(t.FullName); !ok {
			return utils.ValidationFailed(fmt.Sprintf("Traveler %d: %s", i+1, msg))
		}
		if t.Age < 0 || t.Age > 120 {
			return utils.ValidationFailed(fmt.Sprintf("Traveler %d has an invalid age", i+1))
		}
		if ok, msg := utils.ValidateIDProof(t.IDProof); !ok {
			return utils.ValidationFailed(fmt.Sprintf("Traveler %d: %s", i+1, msg))
		}
	}
	if ok, msg := utils.ValidateEmail(strings.TrimSpace(in.ContactEmail)); !ok {
		return utils.ValidationFailed(msg)
	}
	if err := utils.ValidateFreeText("special_requests", in.SpecialRequests, utils.MaxSpecialRequestsLength); err != nil {
		return utils.ValidationFailed(err.Error())
	}
	for _, a := range in.Addons {
		if strings.TrimSpace(a.Name) == "" {
			return utils.ValidationFailed("Addon name is required")
		}
		if a.Quantity < 1 {
			return utils.ValidationFailed(fmt.Sprintf("Addon %s must have a quantity of at least 1", a.Name))
		}
		if a.Amount.IsNegative() {
			return utils.ValidationFailed(fmt.Sprintf("Addon %s cannot have a negative amount", a.Name))
		}
		if !utils.HasMinorPrecision(a.Amount) {
			return utils.ValidationFailed(fmt.Sprintf("Addon %s amount cannot have more than two decimal places", a.Name))
		}
	}
	return nil
}

// UpdateStepInput advances the booking wizard. Nil fields are left untouched.
type UpdateStepInput struct {
	Step            int
	StepData        json.RawMessage
	SpecialRequests *string
}

// BookingService manages the booking aggregate and its lifecycle.
type BookingService struct {
	db        *gorm.DB
	coupons   *CouponService
	inventory ScheduleInventory
	now       func() time.Time
}

func NewBookingService(db *gorm.DB, coupons *CouponService) *BookingService {
	return &BookingService{
		db:      db,
		coupons: coupons,
		now:     time.Now,
	}
}

// Create prices a new DRAFT booking and reserves its seats in one transaction.
func (s *BookingService) Create(ctx context.Context, userID uint, in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg models.TravelPackage
		if err := tx.Where("id = ? AND is_active = ?", in.PackageID, true).First(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Package not found")
			}
			return utils.WrapError(err, "load package")
		}

		var variant models.PackageVariant
		if err := tx.Where("id = ? AND package_id = ?", in.VariantID, in.PackageID).First(&variant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.VariantNotFoundError()
			}
			return utils.WrapError(err, "load variant")
		}

		schedule, err := s.inventory.FindActiveSchedule(tx, in.ScheduleID)
		if err != nil {
			return err
		}
		if schedule.PackageID != in.PackageID {
			return utils.ScheduleUnavailableError("Departure does not belong to this package")
		}

		travelerCount := len(in.Travelers)
		if schedule.AvailableSeats < travelerCount {
			return utils.ScheduleUnavailableError(fmt.Sprintf("Only %d seats left on this departure", schedule.AvailableSeats))
		}

		total := variant.BasePrice.Mul(decimal.NewFromInt(int64(travelerCount)))
		addons := make([]models.BookingAddon, 0, len(in.Addons))
		for _, a := range in.Addons {
			addon := models.BookingAddon{
				Name:     strings.TrimSpace(a.Name),
				Amount:   a.Amount,
				Quantity: a.Quantity,
			}
			total = total.Add(addon.LineTotal())
			addons = append(addons, addon)
		}

		travelers := make([]models.Traveler, 0, travelerCount)
		for _, t := range in.Travelers {
			travelers = append(travelers, models.Traveler{
				FullName:    strings.TrimSpace(t.FullName),
				Age:         t.Age,
				Gender:      t.Gender,
				DateOfBirth: t.DateOfBirth,
				IDProof:     t.IDProof,
			})
		}

		booking = models.Booking{
			UserID:          userID,
			PackageID:       in.PackageID,
			VariantID:       in.VariantID,
			ScheduleID:      schedule.ID,
			TravelerCount:   travelerCount,
			TotalAmount:     total,
			DiscountAmount:  decimal.Zero,
			FinalAmount:     total,
			Status:          models.BookingStatusDraft,
			BookingStep:     1,
			SpecialRequests: utils.SanitizeString(in.SpecialRequests),
			ContactEmail:    strings.TrimSpace(in.ContactEmail),
			Travelers:       travelers,
			Addons:          addons,
		}

		if strings.TrimSpace(in.CouponCode) != "" {
			result, err := s.coupons.validate(tx, in.CouponCode, userID, total)
			if err != nil {
				return err
			}
			if !result.Applied {
				return utils.CouponInvalidError(result.Reason)
			}
			applyDiscount(&booking, result)
		}

		if err := s.inventory.Reserve(tx, schedule.ID, travelerCount); err != nil {
			return err
		}
		if err := tx.Create(&booking).Error; err != nil {
			return utils.WrapError(err, "create booking")
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to create booking for user ID: %d: %v", userID, err)
		return nil, err
	}

	utils.LogInfo("Created booking %d for user ID: %d (%d travelers, final amount %s)",
		booking.ID, userID, booking.TravelerCount, utils.FormatAmount(booking.FinalAmount))
	return &booking, nil
}

// UpdateStep records wizard progress on a DRAFT booking.
func (s *BookingService) UpdateStep(ctx context.Context, bookingID, userID uint, in UpdateStepInput) (*models.Booking, error) {
	if in.Step < 1 {
		return nil, utils.ValidationFailed("Step must be at least 1")
	}
	if len(in.StepData) > 0 && !json.Valid(in.StepData) {
		return nil, utils.ValidationFailed("step_data must be valid JSON")
	}
	if in.SpecialRequests != nil {
		if err := utils.ValidateFreeText("special_requests", *in.SpecialRequests, utils.MaxSpecialRequestsLength); err != nil {
			return nil, utils.ValidationFailed(err.Error())
		}
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadOwned(tx, bookingID, userID)
		if err != nil {
			return err
		}
		if current.Status != models.BookingStatusDraft {
			return utils.InvalidStateError(fmt.Sprintf("Booking can only be edited while in DRAFT (status %s)", current.Status))
		}

		updates := map[string]interface{}{"booking_step": in.Step}
		if len(in.StepData) > 0 {
			updates["step_data"] = datatypes.JSON(in.StepData)
		}
		if in.SpecialRequests != nil {
			updates["special_requests"] = utils.SanitizeString(*in.SpecialRequests)
		}
		if err := transition(tx, bookingID, []string{models.BookingStatusDraft}, updates); err != nil {
			return err
		}

		booking, err = s.reload(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Booking %d moved to step %d", bookingID, in.Step)
	return booking, nil
}

// ApplyCoupon prices a coupon against the booking total, replacing any earlier one.
func (s *BookingService) ApplyCoupon(ctx context.Context, bookingID, userID uint, code string) (*models.Booking, error) {
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadOwned(tx, bookingID, userID)
		if err != nil {
			return err
		}
		if current.Status != models.BookingStatusDraft {
			return utils.InvalidStateError(fmt.Sprintf("Coupons can only be applied while in DRAFT (status %s)", current.Status))
		}

		result, err := s.coupons.validate(tx, code, userID, current.TotalAmount)
		if err != nil {
			return err
		}
		if !result.Applied {
			return utils.CouponInvalidError(result.Reason)
		}

		applyDiscount(current, result)
		updates := map[string]interface{}{
			"discount_amount": current.DiscountAmount,
			"final_amount":    current.FinalAmount,
			"coupon_id":       *current.CouponID,
			"coupon_code":     current.CouponCode,
		}
		if err := transition(tx, bookingID, []string{models.BookingStatusDraft}, updates); err != nil {
			return err
		}

		booking, err = s.reload(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Applied coupon %s to booking %d: discount %s, final %s",
		booking.CouponCode, bookingID, utils.FormatAmount(booking.DiscountAmount), utils.FormatAmount(booking.FinalAmount))
	return booking, nil
}

// Confirm locks the booking's price and moves it to PENDING_PAYMENT.
func (s *BookingService) Confirm(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadOwned(tx, bookingID, userID)
		if err != nil {
			return err
		}
		if current.Status != models.BookingStatusDraft {
			return utils.InvalidStateError(fmt.Sprintf("Only DRAFT bookings can be confirmed (status %s)", current.Status))
		}
		if err := transition(tx, bookingID, []string{models.BookingStatusDraft},
			map[string]interface{}{"status": models.BookingStatusPendingPayment}); err != nil {
			return err
		}

		booking, err = s.reload(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Booking %d confirmed by user ID: %d, awaiting payment of %s", bookingID, userID, utils.FormatAmount(booking.FinalAmount))
	return booking, nil
}

// Cancel abandons an unpaid booking and returns its seats to the departure.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	cancellable := []string{models.BookingStatusDraft, models.BookingStatusPendingPayment}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadOwned(tx, bookingID, userID)
		if err != nil {
			return err
		}
		if current.Status != models.BookingStatusDraft && current.Status != models.BookingStatusPendingPayment {
			return utils.InvalidStateError(fmt.Sprintf("Booking cannot be cancelled in status %s", current.Status))
		}

		now := s.now()
		if err := transition(tx, bookingID, cancellable, map[string]interface{}{
			"status":       models.BookingStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return err
		}
		if err := s.inventory.Release(tx, current.ScheduleID, current.TravelerCount); err != nil {
			return err
		}

		booking, err = s.reload(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Booking %d cancelled by user ID: %d", bookingID, userID)
	return booking, nil
}

// Get returns a booking with its travelers and addons.
func (s *BookingService) Get(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.loadOwned(db, bookingID, userID); err != nil {
		return nil, err
	}
	return s.reload(db, bookingID)
}

// ListForUser returns one page of the user's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Booking, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, "count bookings")
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		return nil, 0, utils.WrapError(err, "list bookings")
	}
	return bookings, total, nil
}

// Complete marks a travelled booking as COMPLETED. Admin only.
func (s *BookingService) Complete(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, bookingID, []string{models.BookingStatusConfirmed},
			map[string]interface{}{"status": models.BookingStatusCompleted}); err != nil {
			var exists int64
			if cerr := tx.Model(&models.Booking{}).Where("id = ?", bookingID).Count(&exists).Error; cerr == nil && exists == 0 {
				return utils.NotFoundError("Booking not found")
			}
			return err
		}
		var err error
		booking, err = s.reload(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Booking %d marked completed", bookingID)
	return booking, nil
}

// markPaid moves a booking from PENDING_PAYMENT to CONFIRMED inside the
// webhook transaction. It reports false when the booking was in another state.
func (s *BookingService) markPaid(tx *gorm.DB, bookingID uint, paidAt time.Time) (bool, error) {
	err := transition(tx, bookingID, []string{models.BookingStatusPendingPayment}, map[string]interface{}{
		"status":       models.BookingStatusConfirmed,
		"completed_at": paidAt,
	})
	if utils.IsKind(err, utils.KindInvalidState) {
		return false, nil
	}
	return err == nil, err
}

// markRefunded moves a paid booking to REFUNDED once its money is returned in full.
func (s *BookingService) markRefunded(tx *gorm.DB, bookingID uint) (bool, error) {
	err := transition(tx, bookingID, []string{models.BookingStatusConfirmed, models.BookingStatusCompleted},
		map[string]interface{}{"status": models.BookingStatusRefunded})
	if utils.IsKind(err, utils.KindInvalidState) {
		return false, nil
	}
	return err == nil, err
}

func (s *BookingService) loadOwned(tx *gorm.DB, bookingID, userID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Booking not found")
		}
		return nil, utils.WrapError(err, "load booking")
	}
	if booking.UserID != userID {
		utils.LogWarn("User ID: %d tried to access booking %d owned by %d", userID, bookingID, booking.UserID)
		return nil, utils.ForbiddenError("You do not have access to this booking")
	}
	return &booking, nil
}

func (s *BookingService) reload(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.Preload("Travelers").Preload("Addons").First(&booking, bookingID).Error; err != nil {
		return nil, utils.WrapError(err, "reload booking")
	}
	return &booking, nil
}

// transition applies updates only while the booking is still in one of the
// from states. Zero affected rows means a concurrent change won.
func transition(tx *gorm.DB, bookingID uint, from []string, updates map[string]interface{}) error {
	res := tx.Model(&models.Booking{}).Where("id = ? AND status IN ?", bookingID, from).Updates(updates)
	if res.Error != nil {
		return utils.WrapError(res.Error, "update booking")
	}
	if res.RowsAffected == 0 {
		return utils.InvalidStateError("Booking status changed, please reload and try again")
	}
	return nil
}

func applyDiscount(booking *models.Booking, result CouponResult) {
	couponID := result.CouponID
	booking.DiscountAmount = result.DiscountAmount
	booking.FinalAmount = booking.TotalAmount.Sub(result.DiscountAmount)
	booking.CouponID = &couponID
	booking.CouponCode = result.Code
}
