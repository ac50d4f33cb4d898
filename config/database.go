package config

import (
	"fmt"

	"github.com/Govind-619/TripSphere/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the postgres connection and migrates the schema
func InitDB(config *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// AutoMigrate creates or updates every table owned by the booking core
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.TravelPackage{},
		&models.PackageVariant{},
		&models.Schedule{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Booking{},
		&models.Traveler{},
		&models.BookingAddon{},
		&models.Payment{},
		&models.Refund{},
		&models.Transaction{},
		&models.PaymentCallback{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}
	return nil
}
