package model

import "github.com/google/uuid"

// Plan is a subscription plan assignable to tenants.
type Plan struct {
	AutoTimeModel

	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
	Slug string    `gorm:"type:varchar(63);not null;unique"`
}

func (p Plan) TableName() string   { return "public.plans" }
func (p Plan) IsSharedModel() bool { return true }
