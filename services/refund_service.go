package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefundInput asks for part or all of a succeeded payment back.
type RefundInput struct {
	PaymentID uint
	Amount    decimal.Decimal
	Reason    string
}

// A claim older than this is treated as abandoned (process crash mid call).
const refundAttemptTimeout = 2 * time.Minute

// RefundService records refunds and pushes them to the provider. A refund row
// is written before the provider is called so no attempt is ever lost.
type RefundService struct {
	db       *gorm.DB
	provider PaymentProvider
	bookings *BookingService
	now      func() time.Time
}

func NewRefundService(db *gorm.DB, provider PaymentProvider, bookings *BookingService) *RefundService {
	return &RefundService{db: db, provider: provider, bookings: bookings, now: time.Now}
}

// InitiateRefund stores a PENDING refund and asks the provider to execute it.
// Provider failure leaves the refund PENDING and is not an error.
func (s *RefundService) InitiateRefund(ctx context.Context, in RefundInput) (*models.Refund, error) {
	if !in.Amount.IsPositive() {
		return nil, utils.ValidationFailed("Refund amount must be greater than 0")
	}
	if !utils.HasMinorPrecision(in.Amount) {
		return nil, utils.ValidationFailed("Refund amount cannot have more than two decimal places")
	}

	db := s.db.WithContext(ctx)
	var payment models.Payment
	var refund models.Refund
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, in.PaymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Payment not found")
			}
			return utils.WrapError(err, "load payment")
		}
		if payment.Status != models.PaymentStatusSucceeded || payment.ProviderPaymentID == nil {
			return utils.InvalidStateError(fmt.Sprintf("Only succeeded payments can be refunded (status %s)", payment.Status))
		}

		refunded, err := refundedTotal(tx, payment.ID)
		if err != nil {
			return err
		}
		refundable := payment.Amount.Sub(refunded)
		if in.Amount.GreaterThan(refundable) {
			return utils.ValidationFailed(fmt.Sprintf("Refund amount exceeds refundable balance of %s", utils.FormatAmount(refundable)))
		}

		// The new row is claimed for the first provider attempt.
		startedAt := s.now()
		refund = models.Refund{
			PaymentID:        payment.ID,
			BookingID:        payment.BookingID,
			Amount:           in.Amount,
			Reason:           in.Reason,
			Status:           models.RefundStatusPending,
			AttemptStartedAt: &startedAt,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return utils.WrapError(err, "create refund")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Refund %d of %s recorded for payment %d", refund.ID, utils.FormatAmount(refund.Amount), payment.ID)

	return s.execute(ctx, db, &payment, &refund)
}

// Retry pushes a PENDING refund to the provider again.
func (s *RefundService) Retry(ctx context.Context, refundID uint) (*models.Refund, error) {
	db := s.db.WithContext(ctx)

	var refund models.Refund
	if err := db.First(&refund, refundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Refund not found")
		}
		return nil, utils.WrapError(err, "load refund")
	}
	if refund.Status != models.RefundStatusPending {
		return nil, utils.InvalidStateError(fmt.Sprintf("Refund is already %s", refund.Status))
	}

	var payment models.Payment
	if err := db.First(&payment, refund.PaymentID).Error; err != nil {
		return nil, utils.WrapError(err, "load payment")
	}
	if payment.ProviderPaymentID == nil {
		return nil, utils.InvalidStateError("Payment has no provider reference")
	}

	if err := s.claimAttempt(db, &refund); err != nil {
		return nil, err
	}

	utils.LogInfo("Retrying refund %d for payment %d", refund.ID, payment.ID)
	return s.execute(ctx, db, &payment, &refund)
}

// claimAttempt marks the refund as being sent to the provider. Only one
// attempt per refund can hold the claim until it fails or goes stale.
func (s *RefundService) claimAttempt(db *gorm.DB, refund *models.Refund) error {
	now := s.now()
	res := db.Model(&models.Refund{}).
		Where("id = ? AND status = ? AND (attempt_started_at IS NULL OR attempt_started_at < ?)",
			refund.ID, models.RefundStatusPending, now.Add(-refundAttemptTimeout)).
		Update("attempt_started_at", now)
	if res.Error != nil {
		return utils.WrapError(res.Error, "claim refund attempt")
	}
	if res.RowsAffected == 0 {
		utils.LogWarn("Refund %d already has a provider attempt in flight", refund.ID)
		return utils.InvalidStateError("Refund is already being processed, try again later")
	}
	refund.AttemptStartedAt = &now
	return nil
}

// execute sends a claimed refund to the provider.
func (s *RefundService) execute(ctx context.Context, db *gorm.DB, payment *models.Payment, refund *models.Refund) (*models.Refund, error) {
	if s.provider == nil {
		s.markFailed(db, refund, errors.New("payment provider not configured"))
		return refund, nil
	}

	amountMinor := utils.ToMinorUnits(refund.Amount)
	if amountMinor <= 0 {
		s.markFailed(db, refund, fmt.Errorf("refund amount %s is below one minor unit", refund.Amount))
		return nil, utils.ValidationFailed("Refund amount is too small")
	}

	providerRef, err := s.provider.Refund(ctx, ProviderRefundRequest{
		PaymentID:   *payment.ProviderPaymentID,
		AmountMinor: amountMinor,
		Receipt:     refundReceipt(refund.ID),
		Notes: map[string]string{
			"booking_id": fmt.Sprint(payment.BookingID),
			"reason":     refund.Reason,
		},
	})
	if err != nil {
		s.markFailed(db, refund, err)
		return refund, nil
	}

	if err := s.markProcessed(db, payment, refund, providerRef); err != nil {
		// The provider already moved the money; the row stays PENDING for reconciliation.
		utils.LogError("Refund %d executed as %s but could not be stored: %v", refund.ID, providerRef, err)
		return nil, err
	}
	utils.LogInfo("Refund %d processed by provider as %s", refund.ID, providerRef)
	return refund, nil
}

// ListPending returns refunds still waiting on the provider, oldest first.
func (s *RefundService) ListPending(ctx context.Context, limit, offset int) ([]models.Refund, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Refund{}).Where("status = ?", models.RefundStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, "count pending refunds")
	}

	var refunds []models.Refund
	q := query.Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&refunds).Error; err != nil {
		return nil, 0, utils.WrapError(err, "list pending refunds")
	}
	return refunds, total, nil
}

func (s *RefundService) markProcessed(db *gorm.DB, payment *models.Payment, refund *models.Refund, providerRef string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&models.Refund{}).
			Where("id = ? AND status = ?", refund.ID, models.RefundStatusPending).
			Updates(map[string]interface{}{
				"status":             models.RefundStatusProcessed,
				"provider_ref_id":    providerRef,
				"processed_at":       now,
				"last_error":         "",
				"attempt_started_at": nil,
			})
		if res.Error != nil {
			return utils.WrapError(res.Error, "mark refund processed")
		}
		if res.RowsAffected == 0 {
			return utils.InvalidStateError("Refund is no longer pending")
		}

		refundID := refund.ID
		ledger := models.Transaction{
			PaymentID:   payment.ID,
			RefundID:    &refundID,
			Type:        models.TransactionTypeRefund,
			Amount:      refund.Amount,
			Currency:    payment.Currency,
			ProviderRef: providerRef,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return utils.WrapError(err, "record refund transaction")
		}

		processed, err := processedTotal(tx, payment.ID)
		if err != nil {
			return err
		}
		if processed.GreaterThanOrEqual(payment.Amount) {
			moved, err := s.bookings.markRefunded(tx, payment.BookingID)
			if err != nil {
				return err
			}
			if moved {
				utils.LogInfo("Booking %d fully refunded", payment.BookingID)
			}
		}

		refund.Status = models.RefundStatusProcessed
		refund.ProviderRefID = &providerRef
		refund.ProcessedAt = &now
		refund.LastError = ""
		refund.AttemptStartedAt = nil
		return nil
	})
}

func (s *RefundService) markFailed(db *gorm.DB, refund *models.Refund, cause error) {
	utils.LogError("Provider refund failed for refund %d, left PENDING: %v", refund.ID, cause)
	refund.LastError = cause.Error()
	refund.AttemptStartedAt = nil
	if err := db.Model(&models.Refund{}).Where("id = ?", refund.ID).Updates(map[string]interface{}{
		"last_error":         refund.LastError,
		"attempt_started_at": nil,
	}).Error; err != nil {
		utils.LogError("Failed to store error on refund %d: %v", refund.ID, err)
	}
}

// refundReceipt is stable per refund so repeated attempts carry the same receipt.
func refundReceipt(refundID uint) string {
	return fmt.Sprintf("refund_%d", refundID)
}

// refundedTotal includes PENDING refunds so they keep their share of the balance.
func refundedTotal(tx *gorm.DB, paymentID uint) (decimal.Decimal, error) {
	var refunds []models.Refund
	if err := tx.Where("payment_id = ?", paymentID).Find(&refunds).Error; err != nil {
		return decimal.Zero, utils.WrapError(err, "load refunds")
	}
	total := decimal.Zero
	for _, r := range refunds {
		total = total.Add(r.Amount)
	}
	return total, nil
}

func processedTotal(tx *gorm.DB, paymentID uint) (decimal.Decimal, error) {
	var refunds []models.Refund
	if err := tx.Where("payment_id = ? AND status = ?", paymentID, models.RefundStatusProcessed).Find(&refunds).Error; err != nil {
		return decimal.Zero, utils.WrapError(err, "load processed refunds")
	}
	total := decimal.Zero
	for _, r := range refunds {
		total = total.Add(r.Amount)
	}
	return total, nil
}
