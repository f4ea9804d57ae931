package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated context threaded through every request.
// InstitutionID is uuid.Nil for admins.
type Session struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Role          Role      `json:"role"`
	InstitutionID uuid.UUID `json:"institution_id"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// HasRole reports whether the session role is one of roles
func (s *Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CanAccessInstitution reports whether the session may read or change data
// scoped to institutionID. Admins see every institution.
func (s *Session) CanAccessInstitution(institutionID uuid.UUID) bool {
	if s.Role == RoleAdmin {
		return true
	}
	return s.InstitutionID != uuid.Nil && s.InstitutionID == institutionID
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
