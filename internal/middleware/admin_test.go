package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/middleware"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/session"
	"github.com/reasyhq/platform/internal/testutils"
)

func TestRequireAdmin(t *testing.T) {
	admin := testutils.NewPlatformUser(nil)

	tests := map[string]struct {
		sess           *session.Session
		gate           *stubGate
		expectedStatus int
		expectRevoked  bool
	}{
		"authorized admin": {
			sess:           &session.Session{ID: "sess1", UserID: admin.ID.String(), Email: admin.Email},
			gate:           &stubGate{user: admin},
			expectedStatus: http.StatusOK,
		},
		"no session": {
			gate:           &stubGate{err: authgate.ErrNoSession},
			expectedStatus: http.StatusUnauthorized,
		},
		"forbidden role revokes session": {
			sess:           &session.Session{ID: "sess1", UserID: admin.ID.String(), Email: admin.Email},
			gate:           &stubGate{err: authgate.ErrRoleForbidden},
			expectedStatus: http.StatusForbidden,
			expectRevoked:  true,
		},
		"deactivated user revokes session": {
			sess:           &session.Session{ID: "sess1", UserID: admin.ID.String(), Email: admin.Email},
			gate:           &stubGate{err: authgate.ErrUserInactive},
			expectedStatus: http.StatusForbidden,
			expectRevoked:  true,
		},
		"transient lookup failure keeps session": {
			sess:           &session.Session{ID: "sess1", UserID: admin.ID.String(), Email: admin.Email},
			gate:           &stubGate{err: authgate.ErrGateLookup},
			expectedStatus: http.StatusForbidden,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// Arrange
			sessions := &stubSessions{sess: tt.sess}

			var gotUser *model.PlatformUser

			handler := middleware.RequireAdmin(tt.gate, sessions)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotUser, _ = middleware.PlatformUserFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				}),
			)

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/admin/registrations", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectRevoked, sessions.revoked)

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, admin, gotUser)
			}
		})
	}
}
