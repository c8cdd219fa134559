// Package reasyapi holds the wire types of the public JSON API.
package reasyapi

import "time"

// DetailedError is the error body every endpoint returns on failure.
type DetailedError struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Status    int             `json:"status"`
	RequestID *string         `json:"requestId,omitempty"`
	Context   *map[string]any `json:"context,omitempty"`
}

type ErrorMessage struct {
	Error DetailedError `json:"error"`
}

// RegistrationRequest is the signup payload from the marketing site.
type RegistrationRequest struct {
	BusinessName string `json:"businessName" validate:"required,min=2,max=255"`
	Email        string `json:"email"        validate:"required,email"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=50"`
}

type Registration struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"businessName"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegistrationList struct {
	Registrations []Registration `json:"registrations"`
	Count         int            `json:"count"`
}

type Tenant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Status      string     `json:"status"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
}

// AvailabilityRequest asks for open slots of a service on a given day.
type AvailabilityRequest struct {
	ServiceID string  `json:"serviceId" validate:"required,uuid"`
	Date      string  `json:"date"      validate:"required,datetime=2006-01-02"`
	StaffID   *string `json:"staffId,omitempty" validate:"omitempty,uuid"`
}

type Slot struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Label    string    `json:"label"`
}

type Availability struct {
	Slots   []Slot `json:"slots"`
	Summary string `json:"summary"`
}

// AppointmentRequest books a concrete slot.
type AppointmentRequest struct {
	ServiceID     string    `json:"serviceId"     validate:"required,uuid"`
	StaffID       *string   `json:"staffId,omitempty" validate:"omitempty,uuid"`
	CustomerName  string    `json:"customerName"  validate:"required,min=1,max=255"`
	CustomerEmail string    `json:"customerEmail" validate:"required,email"`
	StartsAt      time.Time `json:"startsAt"      validate:"required"`
}

type Appointment struct {
	ID            string    `json:"id"`
	ServiceID     string    `json:"serviceId"`
	StaffID       *string   `json:"staffId,omitempty"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
}

type AppointmentList struct {
	Appointments []Appointment `json:"appointments"`
	Count        int           `json:"count"`
}
