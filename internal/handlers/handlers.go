// Package handlers exposes the JSON API: public signup and booking endpoints
// plus the admin registration review endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/reasyhq/platform/internal/api/reasyapi"
	"github.com/reasyhq/platform/internal/api/write"
	"github.com/reasyhq/platform/internal/apierrors"
	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/model"
)

type Handlers struct {
	registrations *manager.RegistrationManager
	bookings      *manager.BookingManager
	validate      *validator.Validate
}

func New(registrations *manager.RegistrationManager, bookings *manager.BookingManager) *Handlers {
	return &Handlers{
		registrations: registrations,
		bookings:      bookings,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Signup files a registration request from the marketing site.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body reasyapi.RegistrationRequest

	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	request := &model.RegistrationRequest{
		BusinessName: body.BusinessName,
		Email:        body.Email,
		ContactPhone: body.ContactPhone,
	}

	err := h.registrations.CreateRequest(ctx, request)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, toRegistration(request))
}

// ListRegistrations returns registration requests for the admin dashboard,
// optionally filtered by status.
func (h *Handlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := model.RegistrationStatus(r.URL.Query().Get("status"))
	if status != "" {
		err := status.Validate()
		if err != nil {
			write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage(err.Error()))
			return
		}
	}

	limit := queryInt(r, "limit", constants.DefaultTop)
	offset := queryInt(r, "offset", constants.DefaultSkip)

	requests, count, err := h.registrations.List(ctx, status, limit, offset)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	list := reasyapi.RegistrationList{
		Registrations: make([]reasyapi.Registration, 0, len(requests)),
		Count:         count,
	}
	for _, request := range requests {
		list.Registrations = append(list.Registrations, toRegistration(request))
	}

	write.JSONResponse(ctx, w, http.StatusOK, list)
}

// ApproveRegistration turns a pending registration into a trial tenant.
func (h *Handlers) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	tenant, err := h.registrations.Approve(ctx, id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, reasyapi.Tenant{
		ID:          tenant.ID,
		Name:        tenant.Name,
		Slug:        tenant.Slug,
		Status:      string(tenant.Status),
		TrialEndsAt: tenant.TrialEndsAt,
	})
}

// RejectRegistration marks a pending registration rejected.
func (h *Handlers) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	err := h.registrations.Reject(ctx, id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Availability answers "what slots are open for this service on this day".
func (h *Handlers) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := reasyapi.AvailabilityRequest{
		ServiceID: r.URL.Query().Get("serviceId"),
		Date:      r.URL.Query().Get("date"),
	}
	if staffID := r.URL.Query().Get("staffId"); staffID != "" {
		params.StaffID = &staffID
	}

	err := h.validate.Struct(params)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage(err.Error()))
		return
	}

	serviceID := uuid.MustParse(params.ServiceID)
	day, _ := time.Parse(time.DateOnly, params.Date)

	var staffID *uuid.UUID

	if params.StaffID != nil {
		parsed := uuid.MustParse(*params.StaffID)
		staffID = &parsed
	}

	result, err := h.bookings.AvailableSlots(ctx, serviceID, day, staffID)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	response := reasyapi.Availability{
		Slots:   make([]reasyapi.Slot, 0, len(result.Slots)),
		Summary: result.Summary,
	}
	for _, slot := range result.Slots {
		response.Slots = append(response.Slots, reasyapi.Slot{
			StartsAt: slot.StartsAt,
			EndsAt:   slot.EndsAt,
			Label:    slot.StartsAt.Format("15:04") + " - " + slot.EndsAt.Format("15:04"),
		})
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

// CreateAppointment books a slot for the tenant in context.
func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body reasyapi.AppointmentRequest

	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	appointment := &model.Appointment{
		ServiceID:     uuid.MustParse(body.ServiceID),
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		StartsAt:      body.StartsAt,
	}
	if body.StaffID != nil {
		staffID := uuid.MustParse(*body.StaffID)
		appointment.StaffID = &staffID
	}

	err := h.bookings.CreateAppointment(ctx, appointment)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, toAppointment(appointment))
}

// ListAppointments returns appointments starting inside [from, to).
func (h *Handlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("from must be an RFC 3339 timestamp"))
		return
	}

	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("to must be an RFC 3339 timestamp"))
		return
	}

	limit := queryInt(r, "limit", constants.DefaultTop)
	offset := queryInt(r, "offset", constants.DefaultSkip)

	appointments, count, err := h.bookings.ListAppointments(ctx, from, to, limit, offset)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	list := reasyapi.AppointmentList{
		Appointments: make([]reasyapi.Appointment, 0, len(appointments)),
		Count:        count,
	}
	for _, appointment := range appointments {
		list.Appointments = append(list.Appointments, toAppointment(appointment))
	}

	write.JSONResponse(ctx, w, http.StatusOK, list)
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
// On failure it writes the error response and returns false.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		log.Error(ctx, "Failed to decode request body", err)
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())

		return false
	}

	err = h.validate.Struct(dst)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage(err.Error()))
		return false
	}

	return true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ValidationErrorMessage("id must be a UUID"))
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handlers) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	log.Error(ctx, "Processing Request", err)

	apiErr := apierrors.APIErrorMapper.Transform(ctx, err)
	write.ErrorResponse(ctx, w, apiErr.ToErrorMessage())
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}

	return value
}

func toRegistration(request *model.RegistrationRequest) reasyapi.Registration {
	return reasyapi.Registration{
		ID:           request.ID.String(),
		BusinessName: request.BusinessName,
		Email:        request.Email,
		Status:       string(request.Status),
		CreatedAt:    request.CreatedAt,
	}
}

func toAppointment(appointment *model.Appointment) reasyapi.Appointment {
	a := reasyapi.Appointment{
		ID:            appointment.ID.String(),
		ServiceID:     appointment.ServiceID.String(),
		CustomerName:  appointment.CustomerName,
		CustomerEmail: appointment.CustomerEmail,
		StartsAt:      appointment.StartsAt,
		EndsAt:        appointment.EndsAt,
	}
	if appointment.StaffID != nil {
		staffID := appointment.StaffID.String()
		a.StaffID = &staffID
	}

	return a
}
