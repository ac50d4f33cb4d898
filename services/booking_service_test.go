package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCreatePricesAndReservesSeats(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 10)
	ctx := context.Background()

	in := f.input(2)
	in.Addons = []AddonInput{{Name: "Airport pickup", Amount: dec("750"), Quantity: 2}}
	in.ContactEmail = "lead@example.com"

	booking, err := s.bookings.Create(ctx, 42, in)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusDraft, booking.Status)
	assert.Equal(t, 1, booking.BookingStep)
	assert.Equal(t, 2, booking.TravelerCount)
	assert.True(t, dec("11500").Equal(booking.TotalAmount))
	assert.True(t, booking.DiscountAmount.IsZero())
	assert.True(t, dec("11500").Equal(booking.FinalAmount))
	assert.Nil(t, booking.CouponID)

	var schedule models.Schedule
	require.NoError(t, s.db.First(&schedule, f.schedule.ID).Error)
	assert.Equal(t, 8, schedule.AvailableSeats)

	got, err := s.bookings.Get(ctx, booking.ID, 42)
	require.NoError(t, err)
	assert.Len(t, got.Travelers, 2)
	assert.Len(t, got.Addons, 1)
}

func TestBookingCreateWithCoupon(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 10)
	coupon := seedCoupon(t, s.db, nil)

	in := f.input(2)
	in.CouponCode = "save10"
	booking, err := s.bookings.Create(context.Background(), 1, in)
	require.NoError(t, err)

	assert.True(t, dec("1000").Equal(booking.DiscountAmount))
	assert.True(t, dec("9000").Equal(booking.FinalAmount))
	require.NotNil(t, booking.CouponID)
	assert.Equal(t, coupon.ID, *booking.CouponID)
	assert.Equal(t, "SAVE10", booking.CouponCode)
}

func TestBookingCreateFailures(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 2)
	ctx := context.Background()

	t.Run("no travelers", func(t *testing.T) {
		_, err := s.bookings.Create(ctx, 1, f.input(0))
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})

	t.Run("bad traveler details", func(t *testing.T) {
		in := f.input(1)
		in.Travelers[0].FullName = "R2D2"
		_, err := s.bookings.Create(ctx, 1, in)
		assert.True(t, utils.IsKind(err, utils.KindValidation))

		in = f.input(1)
		in.SpecialRequests = `<script>alert(1)</script>`
		_, err = s.bookings.Create(ctx, 1, in)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})

	t.Run("addon priced finer than one paisa", func(t *testing.T) {
		in := f.input(1)
		in.Addons = []AddonInput{{Name: "Houseboat dinner", Amount: dec("99.999"), Quantity: 1}}
		_, err := s.bookings.Create(ctx, 1, in)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})

	t.Run("variant from another package", func(t *testing.T) {
		other := seedPackage(t, s.db, "100", 5)
		in := f.input(1)
		in.VariantID = other.variant.ID
		_, err := s.bookings.Create(ctx, 1, in)
		assert.True(t, utils.IsKind(err, utils.KindVariantNotFound))
	})

	t.Run("not enough seats", func(t *testing.T) {
		_, err := s.bookings.Create(ctx, 1, f.input(3))
		assert.True(t, utils.IsKind(err, utils.KindScheduleUnavailable))
	})

	t.Run("inactive schedule", func(t *testing.T) {
		other := seedPackage(t, s.db, "100", 5)
		require.NoError(t, s.db.Model(&models.Schedule{}).Where("id = ?", other.schedule.ID).Update("is_active", false).Error)
		_, err := s.bookings.Create(ctx, 1, other.input(1))
		assert.True(t, utils.IsKind(err, utils.KindScheduleUnavailable))
	})

	t.Run("bad coupon leaves seats untouched", func(t *testing.T) {
		in := f.input(1)
		in.CouponCode = "GHOST"
		_, err := s.bookings.Create(ctx, 1, in)
		require.True(t, utils.IsKind(err, utils.KindCouponInvalid))
		assert.Equal(t, ReasonCouponInvalid, utils.GetAppError(err).Message)

		var schedule models.Schedule
		require.NoError(t, s.db.First(&schedule, f.schedule.ID).Error)
		assert.Equal(t, 2, schedule.AvailableSeats)

		var count int64
		require.NoError(t, s.db.Model(&models.Booking{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestBookingApplyCouponReplacesEarlierCoupon(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 10)
	seedCoupon(t, s.db, nil)
	flat := seedCoupon(t, s.db, func(c *models.Coupon) {
		c.Code = "FLAT2000"
		c.DiscountType = models.CouponTypeFixed
		c.DiscountValue = dec("2000")
	})
	ctx := context.Background()

	booking, err := s.bookings.Create(ctx, 1, f.input(2))
	require.NoError(t, err)

	booking, err = s.bookings.ApplyCoupon(ctx, booking.ID, 1, "SAVE10")
	require.NoError(t, err)
	assert.True(t, dec("9000").Equal(booking.FinalAmount))

	booking, err = s.bookings.ApplyCoupon(ctx, booking.ID, 1, "flat2000")
	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(booking.DiscountAmount))
	assert.True(t, dec("8000").Equal(booking.FinalAmount))
	require.NotNil(t, booking.CouponID)
	assert.Equal(t, flat.ID, *booking.CouponID)

	_, err = s.bookings.ApplyCoupon(ctx, booking.ID, 1, "GHOST")
	assert.True(t, utils.IsKind(err, utils.KindCouponInvalid))

	_, err = s.bookings.ApplyCoupon(ctx, booking.ID, 2, "SAVE10")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestBookingUpdateStep(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 10)
	ctx := context.Background()

	booking, err := s.bookings.Create(ctx, 1, f.input(1))
	require.NoError(t, err)

	notes := "Vegetarian meals"
	booking, err = s.bookings.UpdateStep(ctx, booking.ID, 1, UpdateStepInput{
		Step:            3,
		StepData:        json.RawMessage(`{"room":"twin"}`),
		SpecialRequests: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, booking.BookingStep)
	assert.Equal(t, notes, booking.SpecialRequests)
	assert.JSONEq(t, `{"room":"twin"}`, string(booking.StepData))

	_, err = s.bookings.UpdateStep(ctx, booking.ID, 1, UpdateStepInput{Step: 0})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = s.bookings.UpdateStep(ctx, booking.ID, 1, UpdateStepInput{Step: 2, StepData: json.RawMessage(`{bad`)})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestBookingStateGuards(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 10)
	seedCoupon(t, s.db, nil)
	ctx := context.Background()

	booking, err := s.bookings.Create(ctx, 1, f.input(2))
	require.NoError(t, err)
	s.payBooking(t, booking)

	_, err = s.bookings.ApplyCoupon(ctx, booking.ID, 1, "SAVE10")
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = s.bookings.UpdateStep(ctx, booking.ID, 1, UpdateStepInput{Step: 2})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = s.bookings.Confirm(ctx, booking.ID, 1)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = s.bookings.Cancel(ctx, booking.ID, 1)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	got, err := s.bookings.Get(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	assert.True(t, dec("10000").Equal(got.FinalAmount))
	assert.NotNil(t, got.CompletedAt)
}

func TestBookingCancelReleasesSeats(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 4)
	ctx := context.Background()

	booking, err := s.bookings.Create(ctx, 1, f.input(3))
	require.NoError(t, err)
	_, err = s.bookings.Confirm(ctx, booking.ID, 1)
	require.NoError(t, err)

	cancelled, err := s.bookings.Cancel(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	var schedule models.Schedule
	require.NoError(t, s.db.First(&schedule, f.schedule.ID).Error)
	assert.Equal(t, 4, schedule.AvailableSeats)

	_, err = s.bookings.Cancel(ctx, booking.ID, 1)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestBookingCompleteAndList(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "1000", 10)
	ctx := context.Background()

	paid, err := s.bookings.Create(ctx, 1, f.input(1))
	require.NoError(t, err)
	_, err = s.bookings.Create(ctx, 1, f.input(1))
	require.NoError(t, err)

	_, err = s.bookings.Complete(ctx, paid.ID)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	s.payBooking(t, paid)
	completed, err := s.bookings.Complete(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)

	_, err = s.bookings.Complete(ctx, 9999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	all, total, err := s.bookings.ListForUser(ctx, 1, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	drafts, total, err := s.bookings.ListForUser(ctx, 1, "draft", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, drafts, 1)

	none, total, err := s.bookings.ListForUser(ctx, 2, "", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestBookingLastSeatGoesToOneBooking(t *testing.T) {
	s := newStack(t)
	f := seedPackage(t, s.db, "5000", 1)

	const contenders = 10
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.bookings.Create(context.Background(), uint(i+1), f.input(1))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, utils.IsKind(err, utils.KindScheduleUnavailable), err.Error())
	}
	assert.Equal(t, 1, succeeded)

	var schedule models.Schedule
	require.NoError(t, s.db.First(&schedule, f.schedule.ID).Error)
	assert.Equal(t, 0, schedule.AvailableSeats)

	var count int64
	require.NoError(t, s.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReserveRejectsStaleAvailability(t *testing.T) {
	db := newTestDB(t)
	f := seedPackage(t, db, "5000", 2)
	var inventory ScheduleInventory

	// Both callers read two free seats before either reserves.
	first, err := inventory.FindActiveSchedule(db, f.schedule.ID)
	require.NoError(t, err)
	second, err := inventory.FindActiveSchedule(db, f.schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 2, first.AvailableSeats)
	require.Equal(t, 2, second.AvailableSeats)

	require.NoError(t, inventory.Reserve(db, first.ID, 2))
	err = inventory.Reserve(db, second.ID, 1)
	assert.True(t, utils.IsKind(err, utils.KindScheduleUnavailable))

	var schedule models.Schedule
	require.NoError(t, db.First(&schedule, f.schedule.ID).Error)
	assert.Equal(t, 0, schedule.AvailableSeats)
}
