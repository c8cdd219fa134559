package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reasyhq/platform/internal/clients/availability"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
)

// BookingManager answers availability questions and books appointments for
// one tenant. All repository calls run against the tenant schema resolved
// from the request context.
type BookingManager struct {
	repo       repo.Repo
	calculator availability.Calculator
	cfg        config.Booking
	now        func() time.Time
}

// NewBookingManager wires the booking flow. calculator may be nil when the
// assistant is disabled; availability then comes from the fallback schedule.
func NewBookingManager(r repo.Repo, calculator availability.Calculator, cfg config.Booking) *BookingManager {
	return &BookingManager{
		repo:       r,
		calculator: calculator,
		cfg:        cfg,
		now:        time.Now,
	}
}

// AvailableSlots computes open slots for a service on the given day. Staff
// schedules and existing bookings feed the assistant; if it is disabled or
// fails, a fixed fallback schedule keeps the booking flow alive.
func (m *BookingManager) AvailableSlots(
	ctx context.Context,
	serviceID uuid.UUID,
	day time.Time,
	staffID *uuid.UUID,
) (*availability.Result, error) {
	service, err := m.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	schedules, err := m.staffSchedules(ctx, day, staffID)
	if err != nil {
		return nil, err
	}

	if m.calculator == nil {
		return availability.FallbackResult(day, service.DurationMinutes, time.UTC), nil
	}

	windowStart := time.Date(day.Year(), day.Month(), day.Day(), m.cfg.OpenHour, 0, 0, 0, time.UTC)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), m.cfg.CloseHour, 0, 0, 0, time.UTC)

	result, err := m.calculator.Calculate(ctx, availability.Input{
		ServiceName:     service.Name,
		DurationMinutes: service.DurationMinutes,
		StaffSchedules:  schedules,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
	})
	if err != nil {
		log.Error(ctx, "availability calculation failed, using fallback", err)

		return availability.FallbackResult(day, service.DurationMinutes, time.UTC), nil
	}

	return result, nil
}

// CreateAppointment books a slot. The overlap check and the insert run in
// one transaction so two customers cannot claim the same slot.
func (m *BookingManager) CreateAppointment(ctx context.Context, appointment *model.Appointment) error {
	service, err := m.getService(ctx, appointment.ServiceID)
	if err != nil {
		return err
	}

	if appointment.EndsAt.IsZero() {
		appointment.EndsAt = appointment.StartsAt.Add(time.Duration(service.DurationMinutes) * time.Minute)
	}

	if !appointment.EndsAt.After(appointment.StartsAt) || appointment.StartsAt.Before(m.now()) {
		return ErrInvalidBookingSlot
	}

	if appointment.StaffID != nil {
		err = m.checkStaff(ctx, *appointment.StaffID)
		if err != nil {
			return err
		}
	}

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	return m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		taken, err := m.slotTaken(ctx, r, appointment)
		if err != nil {
			return errs.Wrap(ErrCreateAppointment, err)
		}

		if taken {
			return ErrSlotTaken
		}

		err = r.Create(ctx, appointment)
		if err != nil {
			return errs.Wrap(ErrCreateAppointment, err)
		}

		return nil
	})
}

// ListAppointments returns appointments starting inside [from, to), oldest first.
func (m *BookingManager) ListAppointments(
	ctx context.Context,
	from, to time.Time,
	limit, offset int,
) ([]*model.Appointment, int, error) {
	query := repo.NewQuery().
		WhereOp(repo.StartsAtField, repo.GreaterThan, from.Add(-time.Nanosecond)).
		WhereOp(repo.StartsAtField, repo.LessThan, to).
		OrderBy(repo.StartsAtField, repo.Asc).
		SetLimit(limit).
		SetOffset(offset)

	var appointments []*model.Appointment

	count, err := m.repo.List(ctx, &model.Appointment{}, &appointments, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListAppointments, err)
	}

	return appointments, count, nil
}

func (m *BookingManager) getService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	service := model.Service{}

	_, err := m.repo.First(ctx, &service, *repo.NewQuery().Where(repo.IDField, id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}

		return nil, errs.Wrap(ErrAvailabilityFailure, err)
	}

	return &service, nil
}

func (m *BookingManager) checkStaff(ctx context.Context, id uuid.UUID) error {
	staff := model.Staff{}

	_, err := m.repo.First(ctx, &staff, *repo.NewQuery().Where(repo.IDField, id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrStaffNotFound
		}

		return errs.Wrap(ErrCreateAppointment, err)
	}

	return nil
}

// slotTaken reports whether any appointment overlaps the requested interval,
// for the same staff member when one is requested.
func (m *BookingManager) slotTaken(ctx context.Context, r repo.Repo, appointment *model.Appointment) (bool, error) {
	query := repo.NewQuery().
		WhereOp(repo.StartsAtField, repo.LessThan, appointment.EndsAt).
		WhereOp(repo.EndsAtField, repo.GreaterThan, appointment.StartsAt)

	if appointment.StaffID != nil {
		query = query.Where(repo.StaffIDField, *appointment.StaffID)
	}

	var overlapping []*model.Appointment

	count, err := r.List(ctx, &model.Appointment{}, &overlapping, *query.SetLimit(1))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// staffSchedules renders each active staff member's schedule plus their
// bookings on the requested day into the free-form description the
// availability calculator consumes.
func (m *BookingManager) staffSchedules(
	ctx context.Context,
	day time.Time,
	staffID *uuid.UUID,
) (map[string]string, error) {
	query := repo.NewQuery().Where(repo.IsActiveField, true)
	if staffID != nil {
		query = query.Where(repo.IDField, *staffID)
	}

	var members []*model.Staff

	_, err := m.repo.List(ctx, &model.Staff{}, &members, *query)
	if err != nil {
		return nil, errs.Wrap(ErrAvailabilityFailure, err)
	}

	if staffID != nil && len(members) == 0 {
		return nil, ErrStaffNotFound
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, _, err := m.ListAppointments(ctx, dayStart, dayEnd, repo.DefaultLimit, 0)
	if err != nil {
		return nil, err
	}

	bookedByStaff := make(map[uuid.UUID][]string)

	for _, appointment := range appointments {
		if appointment.StaffID == nil {
			continue
		}

		bookedByStaff[*appointment.StaffID] = append(
			bookedByStaff[*appointment.StaffID],
			fmt.Sprintf("%s-%s",
				appointment.StartsAt.Format("15:04"),
				appointment.EndsAt.Format("15:04"),
			),
		)
	}

	schedules := make(map[string]string, len(members))

	for _, member := range members {
		description := member.Schedule

		if booked := bookedByStaff[member.ID]; len(booked) > 0 {
			description += " Already booked: " + strings.Join(booked, ", ") + " on the selected date."
		}

		schedules[member.Name] = description
	}

	return schedules, nil
}
