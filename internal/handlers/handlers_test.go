package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasyhq/platform/internal/api/reasyapi"
	"github.com/reasyhq/platform/internal/apierrors"
	"github.com/reasyhq/platform/internal/async"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/handlers"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
	"github.com/reasyhq/platform/internal/repo/mock"
	"github.com/reasyhq/platform/internal/testutils"
)

const mainDomain = "reasy.app"

func newHandlers(t *testing.T) (*handlers.Handlers, *mock.InMemoryRepository) {
	t.Helper()

	repository := mock.NewInMemoryRepository()

	registrations := manager.NewRegistrationManager(
		repository,
		&async.MockClient{},
		config.Registration{TrialDays: 14, DefaultPlanSlug: "basic"},
		mainDomain,
	)
	bookings := manager.NewBookingManager(repository, nil, config.Booking{OpenHour: 8, CloseHour: 21})

	return handlers.New(registrations, bookings), repository
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	return decodeBody[reasyapi.ErrorMessage](t, rec).Error.Code
}

func TestHandlers_Signup(t *testing.T) {
	tests := map[string]struct {
		body           string
		seed           *model.RegistrationRequest
		expectedStatus int
		expectedCode   string
	}{
		"valid signup": {
			body:           `{"businessName":"Acme Hair Studio","email":"owner@acme.test"}`,
			expectedStatus: http.StatusCreated,
		},
		"malformed json": {
			body:           `{"businessName":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "JSON_DECODE_ERROR",
		},
		"invalid email": {
			body:           `{"businessName":"Acme Hair Studio","email":"not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		"duplicate email": {
			body:           `{"businessName":"Acme Spa","email":"owner@acme.test"}`,
			seed:           testutils.NewRegistrationRequest(nil),
			expectedStatus: http.StatusConflict,
			expectedCode:   apierrors.Conflict,
		},
		"already onboarded email": {
			body: `{"businessName":"Acme Spa","email":"owner@acme.test"}`,
			seed: testutils.NewRegistrationRequest(func(r *model.RegistrationRequest) {
				r.Status = model.RegistrationApproved
			}),
			expectedStatus: http.StatusConflict,
			expectedCode:   apierrors.Conflict,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// Arrange
			h, repository := newHandlers(t)

			if tt.seed != nil {
				require.NoError(t, repository.Create(t.Context(), tt.seed))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			// Act
			h.Signup(rec, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, rec))
			}

			if tt.expectedStatus == http.StatusCreated {
				registration := decodeBody[reasyapi.Registration](t, rec)
				assert.NotEmpty(t, registration.ID)
				assert.Equal(t, "owner@acme.test", registration.Email)
				assert.Equal(t, string(model.RegistrationPending), registration.Status)
			}
		})
	}
}

func TestHandlers_ListRegistrations(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		// Arrange
		h, repository := newHandlers(t)

		require.NoError(t, repository.Create(t.Context(), testutils.NewRegistrationRequest(nil)))
		require.NoError(t, repository.Create(t.Context(), testutils.NewRegistrationRequest(func(r *model.RegistrationRequest) {
			r.ID = uuid.New()
			r.Email = "other@acme.test"
			r.Status = model.RegistrationRejected
		})))

		req := httptest.NewRequest(http.MethodGet, "/admin/api/registrations?status=pending", nil)
		rec := httptest.NewRecorder()

		// Act
		h.ListRegistrations(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		list := decodeBody[reasyapi.RegistrationList](t, rec)
		assert.Equal(t, 1, list.Count)
		require.Len(t, list.Registrations, 1)
		assert.Equal(t, string(model.RegistrationPending), list.Registrations[0].Status)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)

		req := httptest.NewRequest(http.MethodGet, "/admin/api/registrations?status=bogus", nil)
		rec := httptest.NewRecorder()

		// Act
		h.ListRegistrations(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})
}

func TestHandlers_ApproveRegistration(t *testing.T) {
	t.Run("approves a pending registration", func(t *testing.T) {
		// Arrange
		h, repository := newHandlers(t)

		require.NoError(t, repository.Create(t.Context(), testutils.NewPlan(nil)))

		request := testutils.NewRegistrationRequest(nil)
		require.NoError(t, repository.Create(t.Context(), request))

		req := approvalRequest(t.Context(), request.ID.String(), "approve")
		rec := httptest.NewRecorder()

		// Act
		h.ApproveRegistration(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		tenant := decodeBody[reasyapi.Tenant](t, rec)
		assert.Equal(t, "acme-hair-studio", tenant.Slug)
		assert.Equal(t, string(model.TenantStatusTrial), tenant.Status)
		assert.NotNil(t, tenant.TrialEndsAt)
	})

	t.Run("unknown registration yields 404", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)

		req := approvalRequest(t.Context(), uuid.NewString(), "approve")
		rec := httptest.NewRecorder()

		// Act
		h.ApproveRegistration(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id yields 400", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)

		req := approvalRequest(t.Context(), "not-a-uuid", "approve")
		rec := httptest.NewRecorder()

		// Act
		h.ApproveRegistration(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})
}

func TestHandlers_RejectRegistration(t *testing.T) {
	// Arrange
	h, repository := newHandlers(t)

	request := testutils.NewRegistrationRequest(nil)
	require.NoError(t, repository.Create(t.Context(), request))

	req := approvalRequest(t.Context(), request.ID.String(), "reject")
	rec := httptest.NewRecorder()

	// Act
	h.RejectRegistration(rec, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, rec.Code)

	stored := model.RegistrationRequest{}
	_, err := repository.First(t.Context(), &stored, *repoQueryByID(request.ID))
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationRejected, stored.Status)
}

func TestHandlers_Availability(t *testing.T) {
	t.Run("returns fallback slots when no assistant is configured", func(t *testing.T) {
		// Arrange
		h, repository := newHandlers(t)
		ctx := testutils.CreateCtxWithTenant(mock.TenantID)

		service := testutils.NewService(nil)
		require.NoError(t, repository.Create(ctx, service))

		target := "/api/availability?serviceId=" + service.ID.String() + "&date=2026-09-01"
		req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		// Act
		h.Availability(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		availability := decodeBody[reasyapi.Availability](t, rec)
		require.Len(t, availability.Slots, 2)
		assert.Equal(t, "14:00 - 15:00", availability.Slots[0].Label)
		assert.NotEmpty(t, availability.Summary)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)

		target := "/api/availability?serviceId=" + uuid.NewString() + "&date=tomorrow"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		// Act
		h.Availability(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})

	t.Run("unknown service yields 404", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)
		ctx := testutils.CreateCtxWithTenant(mock.TenantID)

		target := "/api/availability?serviceId=" + uuid.NewString() + "&date=2026-09-01"
		req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		// Act
		h.Availability(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlers_CreateAppointment(t *testing.T) {
	startsAt := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	t.Run("books a free slot", func(t *testing.T) {
		// Arrange
		h, repository := newHandlers(t)
		ctx := testutils.CreateCtxWithTenant(mock.TenantID)

		service := testutils.NewService(nil)
		require.NoError(t, repository.Create(ctx, service))

		req := appointmentRequest(ctx, service.ID, startsAt)
		rec := httptest.NewRecorder()

		// Act
		h.CreateAppointment(rec, req)

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code)

		appointment := decodeBody[reasyapi.Appointment](t, rec)
		assert.Equal(t, service.ID.String(), appointment.ServiceID)
		assert.Equal(t, startsAt.Add(time.Duration(service.DurationMinutes)*time.Minute), appointment.EndsAt.UTC())
	})

	t.Run("occupied slot yields 409", func(t *testing.T) {
		// Arrange
		h, repository := newHandlers(t)
		ctx := testutils.CreateCtxWithTenant(mock.TenantID)

		service := testutils.NewService(nil)
		require.NoError(t, repository.Create(ctx, service))

		first := appointmentRequest(ctx, service.ID, startsAt)
		firstRec := httptest.NewRecorder()
		h.CreateAppointment(firstRec, first)
		require.Equal(t, http.StatusCreated, firstRec.Code)

		req := appointmentRequest(ctx, service.ID, startsAt.Add(15*time.Minute))
		rec := httptest.NewRecorder()

		// Act
		h.CreateAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing customer name yields 400", func(t *testing.T) {
		// Arrange
		h, _ := newHandlers(t)

		body := `{"serviceId":"` + uuid.NewString() + `","customerEmail":"casey@customer.test","startsAt":"2026-09-01T14:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		h.CreateAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})
}

func TestHandlers_ListAppointments(t *testing.T) {
	// Arrange
	h, repository := newHandlers(t)
	ctx := testutils.CreateCtxWithTenant(mock.TenantID)

	startsAt := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	require.NoError(t, repository.Create(ctx, testutils.NewAppointment(startsAt, nil)))
	require.NoError(t, repository.Create(ctx, testutils.NewAppointment(startsAt.Add(72*time.Hour), func(a *model.Appointment) {
		a.ID = uuid.New()
	})))

	target := "/api/appointments?from=2026-09-01T00:00:00Z&to=2026-09-02T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	// Act
	h.ListAppointments(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[reasyapi.AppointmentList](t, rec)
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, startsAt, list.Appointments[0].StartsAt.UTC())
}

func approvalRequest(ctx context.Context, id, action string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/api/registrations/"+id+"/"+action, nil).WithContext(ctx)
	req.SetPathValue("id", id)

	return req
}

func appointmentRequest(ctx context.Context, serviceID uuid.UUID, startsAt time.Time) *http.Request {
	body := `{"serviceId":"` + serviceID.String() +
		`","customerName":"Casey Customer","customerEmail":"casey@customer.test","startsAt":"` +
		startsAt.Format(time.RFC3339) + `"}`

	return httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body)).WithContext(ctx)
}

func repoQueryByID(id uuid.UUID) *repo.Query {
	return repo.NewQuery().Where(repo.IDField, id)
}
