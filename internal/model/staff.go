package model

import "github.com/google/uuid"

// Staff is a service provider employed by a tenant. Lives in the tenant schema.
type Staff struct {
	AutoTimeModel

	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255);not null"`
	Email    string    `gorm:"type:varchar(255);not null"`
	Role     string    `gorm:"type:varchar(50);not null;default:'provider'"`
	IsActive bool      `gorm:"not null;default:true"`

	// Schedule is a free-form description of working hours and breaks,
	// consumed verbatim by the availability calculator.
	Schedule string `gorm:"type:text"`
}

func (s Staff) TableName() string   { return "staff" }
func (s Staff) IsSharedModel() bool { return false }
