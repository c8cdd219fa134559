package session

import (
	"errors"
	"time"
)

var (
	ErrNoSession      = errors.New("no session cookie present")
	ErrInvalidToken   = errors.New("session token is invalid")
	ErrSessionExpired = errors.New("session not found or expired")
	ErrStoreSession   = errors.New("failed to store session")
)

// Session is the authenticated state carried by the session cookie. UserID
// points at a platform user for admin-portal sessions and at a tenant staff
// member for dashboard sessions, distinguished by TenantID being empty.
type Session struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	TenantID string    `json:"tenantId,omitempty"`
	IssuedAt time.Time `json:"issuedAt"`
}

// IsPlatform reports whether the session belongs to a platform operator
// rather than a tenant staff member.
func (s *Session) IsPlatform() bool {
	return s.TenantID == ""
}
