package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/TripSphere/config"
	"github.com/Govind-619/TripSphere/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	pkg      models.TravelPackage
	variant  models.PackageVariant
	schedule models.Schedule
}

// seedPackage creates an active package with one variant priced at basePrice
// and one departure with the given seats.
func seedPackage(t *testing.T, db *gorm.DB, basePrice string, seats int) fixture {
	t.Helper()
	pkg := models.TravelPackage{Name: "Kerala Backwaters", Slug: "kerala-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(&pkg).Error)

	variant := models.PackageVariant{PackageID: pkg.ID, Name: "Standard", BasePrice: dec(basePrice)}
	require.NoError(t, db.Create(&variant).Error)

	schedule := models.Schedule{
		PackageID:      pkg.ID,
		DepartureDate:  time.Now().AddDate(0, 1, 0),
		TotalSeats:     seats,
		AvailableSeats: seats,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&schedule).Error)

	return fixture{pkg: pkg, variant: variant, schedule: schedule}
}

func seedCoupon(t *testing.T, db *gorm.DB, mutate func(*models.Coupon)) models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		Code:          "SAVE10",
		DiscountType:  models.CouponTypePercent,
		DiscountValue: dec("10"),
		ValidFrom:     time.Now().Add(-24 * time.Hour),
		ValidTo:       time.Now().Add(24 * time.Hour),
		IsActive:      true,
	}
	if mutate != nil {
		mutate(&coupon)
	}
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func travelers(n int) []TravelerInput {
	out := make([]TravelerInput, n)
	for i := range out {
		out[i] = TravelerInput{FullName: fmt.Sprintf("Traveler %c", 'A'+i), Age: 30}
	}
	return out
}

func (f fixture) input(n int) CreateBookingInput {
	return CreateBookingInput{
		PackageID:  f.pkg.ID,
		VariantID:  f.variant.ID,
		ScheduleID: f.schedule.ID,
		Travelers:  travelers(n),
	}
}

// fakeProvider records calls and hands out unique ids.
type fakeProvider struct {
	mu        sync.Mutex
	orders    []ProviderOrderRequest
	refunds   []ProviderRefundRequest
	orderErr  error
	refundErr error
	seq       int

	// When set, Refund signals refundEntered and waits for refundRelease.
	refundEntered chan struct{}
	refundRelease chan struct{}
}

func (p *fakeProvider) Name() string { return models.PaymentProviderRazorpay }

func (p *fakeProvider) CreateOrder(_ context.Context, req ProviderOrderRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.orderErr != nil {
		return "", p.orderErr
	}
	p.seq++
	p.orders = append(p.orders, req)
	return fmt.Sprintf("order_test_%d", p.seq), nil
}

func (p *fakeProvider) Refund(_ context.Context, req ProviderRefundRequest) (string, error) {
	p.mu.Lock()
	entered, release := p.refundEntered, p.refundRelease
	p.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return "", p.refundErr
	}
	p.seq++
	p.refunds = append(p.refunds, req)
	return fmt.Sprintf("rfnd_test_%d", p.seq), nil
}

func (p *fakeProvider) refundCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refunds)
}

func (p *fakeProvider) orderCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.orders)
}

var errProviderDown = errors.New("gateway timeout")

// stack wires every service over one database.
type stack struct {
	db       *gorm.DB
	provider *fakeProvider
	coupons  *CouponService
	bookings *BookingService
	payments *PaymentService
	webhooks *WebhookService
	refunds  *RefundService
}

const testWebhookSecret = "whsec_test"

func newStack(t *testing.T) *stack {
	t.Helper()
	db := newTestDB(t)
	provider := &fakeProvider{}
	coupons := NewCouponService(db)
	bookings := NewBookingService(db, coupons)
	return &stack{
		db:       db,
		provider: provider,
		coupons:  coupons,
		bookings: bookings,
		payments: NewPaymentService(db, provider, "INR"),
		webhooks: NewWebhookService(db, testWebhookSecret, bookings, coupons, nil),
		refunds:  NewRefundService(db, provider, bookings),
	}
}

// capturedBody builds a Razorpay style payment.captured delivery.
func capturedBody(paymentID, orderID string, amountMinor int64) []byte {
	return []byte(fmt.Sprintf(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"status":"captured","amount":%d,"currency":"INR"}}}}`,
		paymentID, orderID, amountMinor))
}

// payBooking drives a booking from DRAFT to CONFIRMED through a captured webhook.
func (s *stack) payBooking(t *testing.T, booking *models.Booking) *OrderDescriptor {
	t.Helper()
	ctx := context.Background()
	_, err := s.bookings.Confirm(ctx, booking.ID, booking.UserID)
	require.NoError(t, err)

	order, err := s.payments.CreateOrder(ctx, booking.UserID, CreateOrderInput{BookingID: booking.ID})
	require.NoError(t, err)

	outcome, err := s.webhooks.Handle(ctx, PaymentCaptured{
		PaymentID:   "pay_" + order.OrderID,
		OrderID:     order.OrderID,
		AmountMinor: order.AmountMinor,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)
	return order
}
