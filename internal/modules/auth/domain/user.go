package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InstitutionID resolves the institution the user acts within.
// Owners are their own institution, students and librarians carry it in their
// profile, and admins have none.
func (u *User) InstitutionID() (uuid.UUID, bool) {
	if u.Role.OwnsInstitution() {
		return u.ID, true
	}
	switch p := u.Profile.(type) {
	case StudentProfile:
		return p.InstitutionID, true
	case LibrarianProfile:
		return p.InstitutionID, true
	}
	return uuid.Nil, false
}

// DisplayName prefers the institution or library name for owner accounts
func (u *User) DisplayName() string {
	switch p := u.Profile.(type) {
	case InstitutionProfile:
		if p.Name != "" {
			return p.Name
		}
	case PrivateLibraryProfile:
		if p.Name != "" {
			return p.Name
		}
	}
	return u.Name
}
