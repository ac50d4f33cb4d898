package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrderInput requests a provider order for a booking awaiting payment.
// A nil Amount charges the booking's full final amount.
type CreateOrderInput struct {
	BookingID      uint
	Amount         *decimal.Decimal
	Currency       string
	IdempotencyKey string
}

// OrderDescriptor is what the client needs to open the provider checkout.
type OrderDescriptor struct {
	PaymentID   uint            `json:"payment_id"`
	BookingID   uint            `json:"booking_id"`
	OrderID     string          `json:"order_id"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Replayed    bool            `json:"replayed"`
}

// PaymentService opens provider orders and tracks the resulting payments.
type PaymentService struct {
	db       *gorm.DB
	provider PaymentProvider
	currency string
}

// NewPaymentService builds the service. A nil provider makes every order
// request fail with PaymentProviderUnavailable.
func NewPaymentService(db *gorm.DB, provider PaymentProvider, currency string) *PaymentService {
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	return &PaymentService{db: db, provider: provider, currency: strings.ToUpper(currency)}
}

// CreateOrder opens a provider order for the booking. Repeating a call with the
// same idempotency key returns the first order unchanged.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*OrderDescriptor, error) {
	db := s.db.WithContext(ctx)
	key := strings.TrimSpace(in.IdempotencyKey)

	if key != "" {
		existing, err := s.findByIdempotencyKey(db, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			utils.LogInfo("Replaying payment %d for idempotency key %s", existing.ID, key)
			return replay(existing, userID, in.BookingID)
		}
	}

	var booking models.Booking
	if err := db.First(&booking, in.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Booking not found")
		}
		return nil, utils.WrapError(err, "load booking")
	}
	if booking.UserID != userID {
		utils.LogWarn("User ID: %d requested payment for booking %d owned by %d", userID, booking.ID, booking.UserID)
		return nil, utils.ForbiddenError("You do not have access to this booking")
	}
	if booking.Status != models.BookingStatusPendingPayment {
		return nil, utils.BookingNotInPaymentStateError(booking.Status)
	}

	amount := booking.FinalAmount
	if in.Amount != nil {
		amount = *in.Amount
	}
	if !amount.IsPositive() {
		return nil, utils.ValidationFailed("Payment amount must be greater than 0")
	}
	if !utils.HasMinorPrecision(amount) {
		return nil, utils.ValidationFailed("Payment amount cannot have more than two decimal places")
	}
	if amount.GreaterThan(booking.FinalAmount) {
		return nil, utils.ValidationFailed(fmt.Sprintf("Payment amount cannot exceed %s", utils.FormatAmount(booking.FinalAmount)))
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}

	if s.provider == nil {
		utils.LogError("Payment order requested for booking %d but no provider is configured", booking.ID)
		return nil, utils.PaymentProviderUnavailableError(errors.New("payment provider not configured"))
	}

	amountMinor := utils.ToMinorUnits(amount)
	if amountMinor <= 0 {
		return nil, utils.ValidationFailed("Payment amount is too small")
	}
	orderID, err := s.provider.CreateOrder(ctx, ProviderOrderRequest{
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     receipt("booking", booking.ID),
		Notes: map[string]string{
			"booking_id": fmt.Sprint(booking.ID),
			"user_id":    fmt.Sprint(userID),
		},
	})
	if err != nil {
		utils.LogError("Provider order creation failed for booking %d: %v", booking.ID, err)
		return nil, utils.PaymentProviderUnavailableError(err)
	}

	payment := models.Payment{
		BookingID:       booking.ID,
		UserID:          userID,
		Amount:          amount,
		Currency:        currency,
		Provider:        s.provider.Name(),
		ProviderOrderID: orderID,
		Status:          models.PaymentStatusPending,
	}
	if key != "" {
		payment.IdempotencyKey = &key
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(&payment)
	if res.Error != nil {
		return nil, utils.WrapError(res.Error, "store payment")
	}
	if res.RowsAffected == 0 {
		// A concurrent request with the same key stored its order first.
		utils.LogWarn("Provider order %s left unused: idempotency key %s already stored", orderID, key)
		existing, err := s.findByIdempotencyKey(db, key)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("payment for idempotency key %s vanished", key)
		}
		return replay(existing, userID, in.BookingID)
	}

	utils.LogInfo("Created %s order %s for booking %d: %s %s", payment.Provider, orderID, booking.ID,
		utils.FormatAmount(amount), currency)
	return describe(&payment, false), nil
}

// Get returns a payment visible to the caller. Admins can read any payment.
func (s *PaymentService) Get(ctx context.Context, paymentID, userID uint, isAdmin bool) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Payment not found")
		}
		return nil, utils.WrapError(err, "load payment")
	}
	if !isAdmin && payment.UserID != userID {
		return nil, utils.ForbiddenError("You do not have access to this payment")
	}
	return &payment, nil
}

func (s *PaymentService) findByIdempotencyKey(db *gorm.DB, key string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("idempotency_key = ?", key).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapError(err, "load payment by idempotency key")
	}
	return &payment, nil
}

func replay(existing *models.Payment, userID, bookingID uint) (*OrderDescriptor, error) {
	if existing.UserID != userID {
		return nil, utils.ForbiddenError("Idempotency key belongs to another user")
	}
	if existing.BookingID != bookingID {
		return nil, utils.InvalidStateError("Idempotency key was already used for a different booking")
	}
	return describe(existing, true), nil
}

func describe(p *models.Payment, replayed bool) *OrderDescriptor {
	return &OrderDescriptor{
		PaymentID:   p.ID,
		BookingID:   p.BookingID,
		OrderID:     p.ProviderOrderID,
		Provider:    p.Provider,
		Amount:      p.Amount,
		AmountMinor: utils.ToMinorUnits(p.Amount),
		Currency:    p.Currency,
		Status:      p.Status,
		Replayed:    replayed,
	}
}

// receipt builds a provider receipt id; Razorpay caps them at 40 characters.
func receipt(prefix string, id uint) string {
	return fmt.Sprintf("%s_%d_%s", prefix, id, uuid.New().String()[:8])
}
