package services

import (
	"errors"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
	"gorm.io/gorm"
)

// ScheduleInventory owns the seat counters on departures. Every method takes
// the caller's transaction so seat moves commit with the booking change.
type ScheduleInventory struct{}

// FindActiveSchedule loads a bookable departure.
func (ScheduleInventory) FindActiveSchedule(tx *gorm.DB, scheduleID uint) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := tx.Where("id = ? AND is_active = ?", scheduleID, true).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ScheduleUnavailableError("Departure is not available for booking")
		}
		return nil, utils.WrapError(err, "load schedule")
	}
	return &schedule, nil
}

// Reserve takes seats from the departure. The decrement only happens while
// enough seats remain, so concurrent bookings cannot oversell.
func (ScheduleInventory) Reserve(tx *gorm.DB, scheduleID uint, seats int) error {
	res := tx.Model(&models.Schedule{}).
		Where("id = ? AND is_active = ? AND available_seats >= ?", scheduleID, true, seats).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", seats))
	if res.Error != nil {
		return utils.WrapError(res.Error, "reserve seats")
	}
	if res.RowsAffected == 0 {
		utils.LogWarn("Seat reservation of %d failed on schedule %d", seats, scheduleID)
		return utils.ScheduleUnavailableError("Not enough seats available for this departure")
	}
	utils.LogDebug("Reserved %d seats on schedule %d", seats, scheduleID)
	return nil
}

// Release gives seats back, never above the departure's capacity.
func (ScheduleInventory) Release(tx *gorm.DB, scheduleID uint, seats int) error {
	res := tx.Model(&models.Schedule{}).
		Where("id = ? AND available_seats + ? <= total_seats", scheduleID, seats).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", seats))
	if res.Error != nil {
		return utils.WrapError(res.Error, "release seats")
	}
	if res.RowsAffected == 0 {
		utils.LogWarn("Seat release of %d on schedule %d skipped: would exceed capacity", seats, scheduleID)
		return nil
	}
	utils.LogDebug("Released %d seats on schedule %d", seats, scheduleID)
	return nil
}
