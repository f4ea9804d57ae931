package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile_PicksVariantByRole(t *testing.T) {
	inst := uuid.New()

	tests := []struct {
		name string
		role Role
		data string
		want Profile
	}{
		{"institution", RoleInstitution, `{"name":"City College","phone":"123"}`, InstitutionProfile{Name: "City College", Phone: "123"}},
		{"private_library", RolePrivateLibrary, `{"name":"Corner Books","owner_name":"Asha"}`, PrivateLibraryProfile{Name: "Corner Books", OwnerName: "Asha"}},
		{"student", RoleStudent, `{"institution_id":"` + inst.String() + `","student_number":"S-1","class":"10A"}`, StudentProfile{InstitutionID: inst, StudentNumber: "S-1", Class: "10A"}},
		{"librarian", RoleLibrarian, `{"institution_id":"` + inst.String() + `","employee_id":"E-7"}`, LibrarianProfile{InstitutionID: inst, EmployeeID: "E-7"}},
		{"admin", RoleAdmin, `{}`, AdminProfile{}},
		{"empty_data", RoleInstitution, ``, InstitutionProfile{}},
		{"null_data", RoleStudent, `null`, StudentProfile{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeProfile(tt.role, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.role, got.Role())
		})
	}
}

func TestDecodeProfile_Errors(t *testing.T) {
	_, err := DecodeProfile(Role("pirate"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = DecodeProfile(RoleStudent, []byte(`{not json`))
	assert.Error(t, err)
}

func TestProfile_Validate(t *testing.T) {
	inst := uuid.New()

	assert.Error(t, InstitutionProfile{}.Validate())
	assert.NoError(t, InstitutionProfile{Name: "X"}.Validate())
	assert.Error(t, PrivateLibraryProfile{}.Validate())
	assert.NoError(t, PrivateLibraryProfile{Name: "X"}.Validate())
	assert.Error(t, StudentProfile{StudentNumber: "1"}.Validate())
	assert.Error(t, StudentProfile{InstitutionID: inst}.Validate())
	assert.NoError(t, StudentProfile{InstitutionID: inst, StudentNumber: "1"}.Validate())
	assert.Error(t, LibrarianProfile{}.Validate())
	assert.NoError(t, LibrarianProfile{InstitutionID: inst}.Validate())
	assert.NoError(t, AdminProfile{}.Validate())
}

func TestUser_InstitutionID(t *testing.T) {
	inst := uuid.New()

	owner := &User{ID: uuid.New(), Role: RoleInstitution, Profile: InstitutionProfile{Name: "A"}}
	id, ok := owner.InstitutionID()
	assert.True(t, ok)
	assert.Equal(t, owner.ID, id)

	lib := &User{ID: uuid.New(), Role: RolePrivateLibrary, Profile: PrivateLibraryProfile{Name: "B"}}
	id, ok = lib.InstitutionID()
	assert.True(t, ok)
	assert.Equal(t, lib.ID, id)

	student := &User{ID: uuid.New(), Role: RoleStudent, Profile: StudentProfile{InstitutionID: inst}}
	id, ok = student.InstitutionID()
	assert.True(t, ok)
	assert.Equal(t, inst, id)

	librarian := &User{ID: uuid.New(), Role: RoleLibrarian, Profile: LibrarianProfile{InstitutionID: inst}}
	id, ok = librarian.InstitutionID()
	assert.True(t, ok)
	assert.Equal(t, inst, id)

	admin := &User{ID: uuid.New(), Role: RoleAdmin, Profile: AdminProfile{}}
	_, ok = admin.InstitutionID()
	assert.False(t, ok)
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{Name: "Owner", Role: RoleInstitution, Profile: InstitutionProfile{Name: "City College"}}
	assert.Equal(t, "City College", u.DisplayName())

	u = &User{Name: "Ravi", Role: RoleStudent, Profile: StudentProfile{}}
	assert.Equal(t, "Ravi", u.DisplayName())
}

func TestRole_Predicates(t *testing.T) {
	assert.True(t, RoleLibrarian.IsStaff())
	assert.True(t, RoleInstitution.IsStaff())
	assert.False(t, RoleStudent.IsStaff())
	assert.False(t, RoleAdmin.IsStaff())

	assert.True(t, RolePrivateLibrary.OwnsInstitution())
	assert.False(t, RoleLibrarian.OwnsInstitution())

	assert.False(t, RoleStudent.SelfRegistrable())
	assert.True(t, RoleInstitution.SelfRegistrable())

	assert.False(t, Role("").Valid())
	assert.True(t, RoleAdmin.Valid())
}
