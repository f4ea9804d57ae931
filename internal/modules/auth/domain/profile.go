package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Profile is the role-specific part of a user. Exactly one variant exists per role.
type Profile interface {
	Role() Role
	Validate() error
}

type InstitutionProfile struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (InstitutionProfile) Role() Role { return RoleInstitution }

func (p InstitutionProfile) Validate() error {
	if p.Name == "" {
		return errors.New("institution name is required")
	}
	return nil
}

type PrivateLibraryProfile struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name,omitempty"`
	Address   string `json:"address,omitempty"`
}

func (PrivateLibraryProfile) Role() Role { return RolePrivateLibrary }

func (p PrivateLibraryProfile) Validate() error {
	if p.Name == "" {
		return errors.New("library name is required")
	}
	return nil
}

type StudentProfile struct {
	InstitutionID uuid.UUID `json:"institution_id"`
	StudentNumber string    `json:"student_number"`
	Class         string    `json:"class,omitempty"`
}

func (StudentProfile) Role() Role { return RoleStudent }

func (p StudentProfile) Validate() error {
	if p.InstitutionID == uuid.Nil {
		return errors.New("student must belong to an institution")
	}
	if p.StudentNumber == "" {
		return errors.New("student number is required")
	}
	return nil
}

type LibrarianProfile struct {
	InstitutionID uuid.UUID `json:"institution_id"`
	EmployeeID    string    `json:"employee_id,omitempty"`
}

func (LibrarianProfile) Role() Role { return RoleLibrarian }

func (p LibrarianProfile) Validate() error {
	if p.InstitutionID == uuid.Nil {
		return errors.New("librarian must belong to an institution")
	}
	return nil
}

type AdminProfile struct{}

func (AdminProfile) Role() Role      { return RoleAdmin }
func (AdminProfile) Validate() error { return nil }

// DecodeProfile picks the variant for role and unmarshals data into it.
// Empty data yields the zero variant.
func DecodeProfile(role Role, data []byte) (Profile, error) {
	var p Profile
	switch role {
	case RoleInstitution:
		v := InstitutionProfile{}
		if err := unmarshalProfile(data, &v); err != nil {
			return nil, err
		}
		p = v
	case RolePrivateLibrary:
		v := PrivateLibraryProfile{}
		if err := unmarshalProfile(data, &v); err != nil {
			return nil, err
		}
		p = v
	case RoleStudent:
		v := StudentProfile{}
		if err := unmarshalProfile(data, &v); err != nil {
			return nil, err
		}
		p = v
	case RoleLibrarian:
		v := LibrarianProfile{}
		if err := unmarshalProfile(data, &v); err != nil {
			return nil, err
		}
		p = v
	case RoleAdmin:
		p = AdminProfile{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return p, nil
}

func unmarshalProfile(data []byte, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	return nil
}
