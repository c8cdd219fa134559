package testutils

import (
	"time"

	"github.com/google/uuid"

	"github.com/reasyhq/platform/internal/model"
)

// NewTenant builds an active tenant with sensible defaults; m mutates it.
func NewTenant(m func(*model.Tenant)) *model.Tenant {
	tenant := &model.Tenant{
		ID:         uuid.NewString(),
		Name:       "Acme Hair Studio",
		Slug:       "acme",
		Status:     model.TenantStatusActive,
		PlanID:     uuid.NewString(),
		OwnerEmail: "owner@acme.test",
		Timezone:   "UTC",
		Currency:   "USD",
		Country:    "US",
		Language:   "en",
	}
	tenant.SchemaName = model.SchemaNameForSlug(tenant.Slug)

	if m != nil {
		m(tenant)
	}

	return tenant
}

// NewTrialTenant builds a trial tenant whose trial ends at the given instant.
func NewTrialTenant(endsAt time.Time, m func(*model.Tenant)) *model.Tenant {
	return NewTenant(func(t *model.Tenant) {
		t.Status = model.TenantStatusTrial
		t.TrialEndsAt = &endsAt

		if m != nil {
			m(t)
		}
	})
}

// NewPlatformUser builds an active platform admin; m mutates it.
func NewPlatformUser(m func(*model.PlatformUser)) *model.PlatformUser {
	user := &model.PlatformUser{
		ID:        uuid.New(),
		Email:     "admin@reasy.test",
		FirstName: "Pat",
		LastName:  "Admin",
		Role:      model.RoleAdmin,
		IsActive:  true,
	}

	if m != nil {
		m(user)
	}

	return user
}

// NewPlan builds a subscription plan; m mutates it.
func NewPlan(m func(*model.Plan)) *model.Plan {
	plan := &model.Plan{
		ID:   uuid.New(),
		Name: "Basic",
		Slug: "basic",
	}

	if m != nil {
		m(plan)
	}

	return plan
}

// NewService builds an active bookable service; m mutates it.
func NewService(m func(*model.Service)) *model.Service {
	service := &model.Service{
		ID:              uuid.New(),
		Name:            "Haircut & Styling",
		DurationMinutes: 60,
		PriceCents:      4500,
		IsActive:        true,
	}

	if m != nil {
		m(service)
	}

	return service
}

// NewStaff builds an active staff member; m mutates it.
func NewStaff(m func(*model.Staff)) *model.Staff {
	staff := &model.Staff{
		ID:       uuid.New(),
		Name:     "Jane Doe",
		Email:    "jane@acme.test",
		Role:     "provider",
		IsActive: true,
		Schedule: "Works Mon-Fri 9am-5pm. Lunch at 1pm-2pm.",
	}

	if m != nil {
		m(staff)
	}

	return staff
}

// NewAppointment builds a one-hour appointment starting at the given instant; m mutates it.
func NewAppointment(startsAt time.Time, m func(*model.Appointment)) *model.Appointment {
	appointment := &model.Appointment{
		ID:            uuid.New(),
		ServiceID:     uuid.New(),
		CustomerName:  "Casey Customer",
		CustomerEmail: "casey@example.test",
		StartsAt:      startsAt,
		EndsAt:        startsAt.Add(time.Hour),
	}

	if m != nil {
		m(appointment)
	}

	return appointment
}

// NewRegistrationRequest builds a pending registration; m mutates it.
func NewRegistrationRequest(m func(*model.RegistrationRequest)) *model.RegistrationRequest {
	request := &model.RegistrationRequest{
		ID:           uuid.New(),
		BusinessName: "Acme Hair Studio",
		Email:        "owner@acme.test",
		Status:       model.RegistrationPending,
	}

	if m != nil {
		m(request)
	}

	return request
}
