package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TravelPackage is owned by the packages subsystem. Bookings only read it.
type TravelPackage struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"type:varchar(200);not null" json:"name"`
	Slug      string           `gorm:"type:varchar(200);uniqueIndex" json:"slug"`
	IsActive  bool             `json:"is_active"`
	Variants  []PackageVariant `gorm:"foreignKey:PackageID" json:"variants,omitempty"`
	Schedules []Schedule       `gorm:"foreignKey:PackageID" json:"schedules,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// PackageVariant is a priced tier of a package (e.g. standard, deluxe).
type PackageVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PackageID uint            `gorm:"index;not null" json:"package_id"`
	Name      string          `gorm:"type:varchar(120);not null" json:"name"`
	BasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Schedule is one departure of a package and carries the seat inventory.
type Schedule struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PackageID      uint           `gorm:"index;not null" json:"package_id"`
	DepartureDate  time.Time      `json:"departure_date"`
	TotalSeats     int            `gorm:"not null" json:"total_seats"`
	AvailableSeats int            `gorm:"not null" json:"available_seats"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
