package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookOutcome says what a delivery did. Every outcome is acknowledged to
// the provider with 200.
type WebhookOutcome string

const (
	OutcomeProcessed      WebhookOutcome = "processed"
	OutcomeDuplicate      WebhookOutcome = "duplicate"
	OutcomeUnknownPayment WebhookOutcome = "unknown_payment"
	OutcomeIgnored        WebhookOutcome = "ignored"
)

// WebhookService turns verified provider callbacks into payment and booking
// state changes. Deliveries may repeat or arrive out of order.
type WebhookService struct {
	db       *gorm.DB
	secret   string
	provider string
	bookings *BookingService
	coupons  *CouponService
	notifier Notifier
	now      func() time.Time
}

// NewWebhookService builds the reconciler. notifier may be nil.
func NewWebhookService(db *gorm.DB, secret string, bookings *BookingService, coupons *CouponService, notifier Notifier) *WebhookService {
	return &WebhookService{
		db:       db,
		secret:   secret,
		provider: models.PaymentProviderRazorpay,
		bookings: bookings,
		coupons:  coupons,
		notifier: notifier,
		now:      time.Now,
	}
}

// Verify checks the hex HMAC-SHA256 of the raw body against signature.
func (s *WebhookService) Verify(rawBody []byte, signature string) bool {
	if s.secret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write(rawBody)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// Process verifies, records and applies one delivery.
func (s *WebhookService) Process(ctx context.Context, rawBody []byte, signature, eventID string) (WebhookOutcome, error) {
	if !s.Verify(rawBody, signature) {
		utils.LogWarn("Rejected webhook delivery %q: signature mismatch", eventID)
		return "", utils.SignatureInvalidError()
	}

	event, err := ParseWebhookEvent(rawBody)
	if err != nil {
		utils.LogError("Verified webhook %q could not be parsed: %v", eventID, err)
		return "", utils.ValidationFailed("Malformed webhook payload")
	}

	if err := s.record(ctx, eventID, event.EventName(), rawBody); err != nil {
		return "", err
	}

	return s.Handle(ctx, event)
}

// Handle applies a parsed event. Only PaymentCaptured changes state.
func (s *WebhookService) Handle(ctx context.Context, event WebhookEvent) (WebhookOutcome, error) {
	switch ev := event.(type) {
	case PaymentCaptured:
		return s.handleCaptured(ctx, ev)
	case Unrecognized:
		utils.LogInfo("Ignoring webhook event %q: %s", ev.Name, ev.Reason)
		return OutcomeIgnored, nil
	default:
		return OutcomeIgnored, nil
	}
}

func (s *WebhookService) handleCaptured(ctx context.Context, ev PaymentCaptured) (WebhookOutcome, error) {
	db := s.db.WithContext(ctx)

	var payment models.Payment
	if err := db.Where("provider_order_id = ?", ev.OrderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogWarn("Captured payment %s references unknown order %s", ev.PaymentID, ev.OrderID)
			return OutcomeUnknownPayment, nil
		}
		return "", utils.WrapError(err, "load payment for webhook")
	}

	outcome := OutcomeDuplicate
	var booking models.Booking
	confirmed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":              models.PaymentStatusSucceeded,
				"provider_payment_id": ev.PaymentID,
				"paid_at":             now,
			})
		if res.Error != nil {
			return utils.WrapError(res.Error, "mark payment succeeded")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		outcome = OutcomeProcessed

		if ev.AmountMinor > 0 && ev.AmountMinor != utils.ToMinorUnits(payment.Amount) {
			utils.LogWarn("Captured amount %d for order %s differs from payment %d amount %s",
				ev.AmountMinor, ev.OrderID, payment.ID, utils.FormatAmount(payment.Amount))
		}

		capture := models.Transaction{
			PaymentID:   payment.ID,
			Type:        models.TransactionTypeCapture,
			Amount:      payment.Amount,
			Currency:    payment.Currency,
			ProviderRef: ev.PaymentID,
		}
		if err := tx.Create(&capture).Error; err != nil {
			return utils.WrapError(err, "record capture transaction")
		}

		if err := tx.First(&booking, payment.BookingID).Error; err != nil {
			return utils.WrapError(err, "load booking for webhook")
		}
		moved, err := s.bookings.markPaid(tx, booking.ID, now)
		if err != nil {
			return err
		}
		if !moved {
			// Money arrived for a booking that left PENDING_PAYMENT (cancelled
			// or paid twice). Keep the payment so an operator can refund it.
			utils.LogError("Payment %d captured for booking %d in status %s; needs manual refund",
				payment.ID, booking.ID, booking.Status)
			return nil
		}
		confirmed = true

		if booking.CouponID != nil && booking.DiscountAmount.IsPositive() {
			if _, err := s.coupons.recordUsage(tx, UsageRecord{
				CouponID:       *booking.CouponID,
				UserID:         booking.UserID,
				BookingID:      booking.ID,
				DiscountAmount: booking.DiscountAmount,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to apply captured payment %s for order %s: %v", ev.PaymentID, ev.OrderID, err)
		return "", err
	}

	if outcome == OutcomeDuplicate {
		utils.LogInfo("Duplicate capture for order %s ignored (payment %d)", ev.OrderID, payment.ID)
		return outcome, nil
	}

	utils.LogInfo("Payment %d captured as %s; booking %d confirmed: %t", payment.ID, ev.PaymentID, booking.ID, confirmed)
	if confirmed && s.notifier != nil {
		payment.Status = models.PaymentStatusSucceeded
		booking.Status = models.BookingStatusConfirmed
		notifier := s.notifier
		notifyAsync("booking confirmation", func() error {
			return notifier.BookingConfirmed(booking, payment)
		})
	}
	return outcome, nil
}

func (s *WebhookService) record(ctx context.Context, eventID, eventName string, rawBody []byte) error {
	callback := models.PaymentCallback{
		Provider:  s.provider,
		EventID:   eventID,
		EventName: eventName,
		Payload:   datatypes.JSON(rawBody),
	}
	if err := s.db.WithContext(ctx).Create(&callback).Error; err != nil {
		utils.LogError("Failed to record webhook %q: %v", eventID, err)
		return utils.WrapError(err, "record webhook")
	}
	return nil
}
