package model

import "github.com/google/uuid"

// Service is a bookable offering of a tenant. Lives in the tenant schema.
type Service struct {
	AutoTimeModel

	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(255);not null"`
	DurationMinutes int       `gorm:"not null"`
	PriceCents      int64     `gorm:"not null;default:0"`
	IsActive        bool      `gorm:"not null;default:true"`
}

func (s Service) TableName() string   { return "services" }
func (s Service) IsSharedModel() bool { return false }
