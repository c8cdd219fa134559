package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRegistrationStatus = errors.New("registration status is not valid")

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

var validRegistrationStatuses = map[RegistrationStatus]struct{}{
	RegistrationPending:  {},
	RegistrationApproved: {},
	RegistrationRejected: {},
}

func (s RegistrationStatus) Validate() error {
	if _, ok := validRegistrationStatuses[s]; !ok {
		return ErrInvalidRegistrationStatus
	}

	return nil
}

// RegistrationRequest is a pending application to become a tenant.
type RegistrationRequest struct {
	AutoTimeModel

	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	BusinessName string             `gorm:"type:varchar(255);not null"`
	Email        string             `gorm:"type:varchar(255);not null;unique"`
	ContactPhone string             `gorm:"type:varchar(50)"`
	Status       RegistrationStatus `gorm:"type:varchar(50);not null;default:'pending'"`
	ProcessedAt  *time.Time
}

func (r RegistrationRequest) TableName() string   { return "public.registration_requests" }
func (r RegistrationRequest) IsSharedModel() bool { return true }
