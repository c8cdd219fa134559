package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	multitenancyMiddleware "github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"

	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/middleware"
)

func TestMultiTenancyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		expectedTenant string
		expectedError  string
	}{
		{
			name:           "resolved tenant header",
			header:         "tenant123",
			expectedTenant: "tenant123",
		},
		{
			name:          "missing tenant header",
			expectedError: "invalid tenant or tenant not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var capturedTenant string

			handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				tenant, ok := r.Context().Value(multitenancyMiddleware.TenantKey).(string)
				if ok {
					capturedTenant = tenant
				}
			})

			wrappedHandler := middleware.InjectMultiTenancy()(handler)

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/v1/appointments", nil)
			if tt.header != "" {
				req.Header.Set(constants.TenantIDHeader, tt.header)
			}

			w := httptest.NewRecorder()

			// Act
			wrappedHandler.ServeHTTP(w, req)
			res := w.Result()
			defer res.Body.Close()

			// Assert
			if tt.expectedError != "" {
				resBody, err := io.ReadAll(res.Body)
				assert.NoError(t, err)
				assert.Contains(t, string(resBody), tt.expectedError)
			} else {
				assert.Equal(t, tt.expectedTenant, capturedTenant)
			}
		})
	}
}
