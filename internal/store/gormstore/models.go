package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest mirrors the guests table.
type Guest struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"not null"`
	LastName    string    `gorm:"not null"`
	PhoneNumber string    `gorm:""`
	Address     string    `gorm:""`
	PostalCode  string    `gorm:""`
	City        string    `gorm:""`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Guest) TableName() string { return "guests" }

func (guestRow *Guest) BeforeCreate(tx *gorm.DB) error {
	if guestRow.ID == "" {
		guestRow.ID = uuid.NewString()
	}
	return nil
}

// Finance mirrors the finances table. AmountDue has no column; it is derived
// by the service on every read.
type Finance struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	AmountPayed int64     `gorm:"not null"`
	AmountTotal int64     `gorm:"not null"`
	Description string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index:idx_finances_created_at"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Finance) TableName() string { return "finances" }

func (financeRow *Finance) BeforeCreate(tx *gorm.DB) error {
	if financeRow.ID == "" {
		financeRow.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates or updates both tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Guest{}, &Finance{})
}
