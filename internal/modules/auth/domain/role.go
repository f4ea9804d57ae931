package domain

// Role tags which profile variant a user carries and which routes they may reach
type Role string

const (
	RoleInstitution    Role = "institution"
	RolePrivateLibrary Role = "private_library"
	RoleStudent        Role = "student"
	RoleLibrarian      Role = "librarian"
	RoleAdmin          Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleInstitution, RolePrivateLibrary, RoleStudent, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r manages a collection (owners and librarians)
func (r Role) IsStaff() bool {
	return r == RoleInstitution || r == RolePrivateLibrary || r == RoleLibrarian
}

// OwnsInstitution reports whether the user's own id is the institution id
func (r Role) OwnsInstitution() bool {
	return r == RoleInstitution || r == RolePrivateLibrary
}

// SelfRegistrable reports whether the role may be created through public signup
func (r Role) SelfRegistrable() bool {
	return r == RoleInstitution || r == RolePrivateLibrary || r == RoleAdmin
}
