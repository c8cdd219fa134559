package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a confirmed booking. Lives in the tenant schema.
type Appointment struct {
	AutoTimeModel

	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ServiceID     uuid.UUID  `gorm:"type:uuid;not null"`
	StaffID       *uuid.UUID `gorm:"type:uuid"`
	CustomerName  string     `gorm:"type:varchar(255);not null"`
	CustomerEmail string     `gorm:"type:varchar(255);not null"`
	StartsAt      time.Time  `gorm:"not null"`
	EndsAt        time.Time  `gorm:"not null"`
}

func (a Appointment) TableName() string   { return "appointments" }
func (a Appointment) IsSharedModel() bool { return false }
