package application

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
)

// CreateStudentRequest enrols a student in the caller's institution
type CreateStudentRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	StudentNumber string `json:"student_number"`
	Class         string `json:"class,omitempty"`
}

// CreateLibrarianRequest adds a librarian to the caller's institution
type CreateLibrarianRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id,omitempty"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// MemberResponse is a member as shown to institution staff
type MemberResponse struct {
	ID        uuid.UUID          `json:"id"`
	Email     string             `json:"email"`
	Name      string             `json:"name"`
	Role      string             `json:"role"`
	Profile   authDomain.Profile `json:"profile"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
}

type MemberList struct {
	Members []MemberResponse `json:"members"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func toMemberResponse(u *authDomain.User) MemberResponse {
	return MemberResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Profile:   u.Profile,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
