package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authApp "github.com/saransh1220/libraria/internal/modules/auth/application"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/user/domain"
)

// UserService is the member directory of an institution: staff enrol
// students, owners add librarians, and both can list and deactivate members.
type UserService struct {
	repo   authDomain.UserRepository
	logger *zap.Logger
}

func NewUserService(repo authDomain.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// CreateStudent enrols a student in the actor's institution
func (s *UserService) CreateStudent(ctx context.Context, actor *authDomain.Session, req CreateStudentRequest) (*MemberResponse, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	profile := authDomain.StudentProfile{
		InstitutionID: actor.InstitutionID,
		StudentNumber: req.StudentNumber,
		Class:         req.Class,
	}
	return s.create(ctx, actor, req.Email, req.Password, req.Name, profile)
}

// CreateLibrarian adds a librarian; only institution owners may do this
func (s *UserService) CreateLibrarian(ctx context.Context, actor *authDomain.Session, req CreateLibrarianRequest) (*MemberResponse, error) {
	if !actor.Role.OwnsInstitution() {
		return nil, domain.ErrForbidden
	}

	profile := authDomain.LibrarianProfile{
		InstitutionID: actor.InstitutionID,
		EmployeeID:    req.EmployeeID,
	}
	return s.create(ctx, actor, req.Email, req.Password, req.Name, profile)
}

func (s *UserService) create(ctx context.Context, actor *authDomain.Session, email, password, name string, profile authDomain.Profile) (*MemberResponse, error) {
	user, err := authApp.NewUser(email, password, name, profile)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("member created",
		zap.String("member_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("institution_id", actor.InstitutionID.String()),
		zap.String("created_by", actor.UserID.String()))

	resp := toMemberResponse(user)
	return &resp, nil
}

// ListMembers pages through students or librarians of the actor's institution
func (s *UserService) ListMembers(ctx context.Context, actor *authDomain.Session, role authDomain.Role, limit, offset int) (*MemberList, error) {
	if role != authDomain.RoleStudent && role != authDomain.RoleLibrarian {
		return nil, domain.ErrInvalidRole
	}
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	users, total, err := s.repo.ListByInstitution(ctx, actor.InstitutionID, role, limit, offset)
	if err != nil {
		return nil, err
	}

	list := &MemberList{Members: make([]MemberResponse, 0, len(users)), Total: total, Limit: limit, Offset: offset}
	for i := range users {
		list.Members = append(list.Members, toMemberResponse(&users[i]))
	}
	return list, nil
}

// GetMember returns a member of the actor's institution
func (s *UserService) GetMember(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*MemberResponse, error) {
	user, err := s.member(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toMemberResponse(user)
	return &resp, nil
}

// SetMemberActive enables or disables a member's login. Librarians can only
// toggle students.
func (s *UserService) SetMemberActive(ctx context.Context, actor *authDomain.Session, id uuid.UUID, active bool) error {
	if !actor.Role.IsStaff() {
		return domain.ErrForbidden
	}
	user, err := s.member(ctx, actor, id)
	if err != nil {
		return err
	}
	if user.Role == authDomain.RoleLibrarian && !actor.Role.OwnsInstitution() {
		return domain.ErrForbidden
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("member status changed", zap.String("member_id", id.String()), zap.Bool("active", active))
	return nil
}

// FindStudent resolves an active student enrolled in institutionID
func (s *UserService) FindStudent(ctx context.Context, institutionID, studentID uuid.UUID) (*authDomain.User, error) {
	user, err := s.repo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	inst, ok := user.InstitutionID()
	if user.Role != authDomain.RoleStudent || !ok || inst != institutionID || !user.IsActive {
		return nil, domain.ErrMemberNotFound
	}
	return user, nil
}

func (s *UserService) member(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*authDomain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	if user.Role != authDomain.RoleStudent && user.Role != authDomain.RoleLibrarian {
		return nil, domain.ErrMemberNotFound
	}
	inst, ok := user.InstitutionID()
	if !ok || !actor.CanAccessInstitution(inst) {
		return nil, domain.ErrMemberNotFound
	}
	return user, nil
}
