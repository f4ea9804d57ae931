package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/dashboard/application"
	"github.com/saransh1220/libraria/internal/modules/dashboard/domain"
	reminderDomain "github.com/saransh1220/libraria/internal/modules/reminder/domain"
)

type mockRepo struct {
	catalogTotalsFn    func(context.Context, uuid.UUID) (*domain.CatalogTotals, error)
	outstandingFinesFn func(context.Context, uuid.UUID) (float64, error)
	countUsersByRoleFn func(context.Context) (map[authDomain.Role]int, error)
}

func (m *mockRepo) CatalogTotals(ctx context.Context, id uuid.UUID) (*domain.CatalogTotals, error) {
	return m.catalogTotalsFn(ctx, id)
}
func (m *mockRepo) OutstandingFines(ctx context.Context, id uuid.UUID) (float64, error) {
	return m.outstandingFinesFn(ctx, id)
}
func (m *mockRepo) CountUsersByRole(ctx context.Context) (map[authDomain.Role]int, error) {
	return m.countUsersByRoleFn(ctx)
}

type mockIssues struct {
	studentFn func(context.Context, uuid.UUID) ([]circulationDomain.IssueRecord, error)
	activeFn  func(context.Context, uuid.UUID) ([]circulationDomain.IssueRecord, error)
}

func (m *mockIssues) GetStudentIssues(ctx context.Context, id uuid.UUID) ([]circulationDomain.IssueRecord, error) {
	return m.studentFn(ctx, id)
}
func (m *mockIssues) ActiveIssues(ctx context.Context, id uuid.UUID) ([]circulationDomain.IssueRecord, error) {
	return m.activeFn(ctx, id)
}

type unreadFn func(context.Context, uuid.UUID) (int, error)

func (f unreadFn) UnreadCount(ctx context.Context, id uuid.UUID) (int, error) { return f(ctx, id) }

type reminderFn func(context.Context, *authDomain.Session) (*reminderDomain.RunResult, error)

func (f reminderFn) RunForStudent(ctx context.Context, s *authDomain.Session) (*reminderDomain.RunResult, error) {
	return f(ctx, s)
}

var today = time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)

func issueDueIn(days int, status circulationDomain.IssueStatus, fine float64) circulationDomain.IssueRecord {
	return circulationDomain.IssueRecord{
		ID:      uuid.New(),
		DueDate: time.Date(2024, 6, 10+days, 0, 0, 0, 0, time.UTC),
		Status:  status,
		Fine:    fine,
	}
}

func TestDashboardService_StudentDashboard(t *testing.T) {
	student := &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleStudent, InstitutionID: uuid.New()}
	issues := []circulationDomain.IssueRecord{
		issueDueIn(-2, circulationDomain.StatusIssued, 0),
		issueDueIn(1, circulationDomain.StatusIssued, 0),
		issueDueIn(9, circulationDomain.StatusIssued, 0),
		issueDueIn(-20, circulationDomain.StatusReturned, 30),
		issueDueIn(-40, circulationDomain.StatusReturned, 0),
	}

	var order []string
	reminders := reminderFn(func(_ context.Context, s *authDomain.Session) (*reminderDomain.RunResult, error) {
		order = append(order, "reminders")
		assert.Equal(t, student, s)
		return &reminderDomain.RunResult{Created: 2, Skipped: []reminderDomain.SkippedIssue{}, Failures: []reminderDomain.IssueFailure{}}, nil
	})
	reader := &mockIssues{studentFn: func(_ context.Context, id uuid.UUID) ([]circulationDomain.IssueRecord, error) {
		assert.Equal(t, student.UserID, id)
		return issues, nil
	}}
	unread := unreadFn(func(context.Context, uuid.UUID) (int, error) {
		order = append(order, "unread")
		return 2, nil
	})

	svc := application.NewDashboardService(&mockRepo{}, reader, unread, reminders, nil).WithClock(func() time.Time { return today })
	out, err := svc.StudentDashboard(context.Background(), student)
	require.NoError(t, err)

	assert.Equal(t, []string{"reminders", "unread"}, order)
	assert.Equal(t, 3, out.IssuedCount)
	assert.Equal(t, 1, out.OverdueCount)
	assert.Equal(t, 1, out.DueSoonCount)
	assert.Equal(t, 2, out.ReturnedCount)
	assert.Equal(t, 2, out.UnreadNotifications)
	assert.Equal(t, 30.0, out.TotalFines)
	assert.Equal(t, issues[0].ID, out.Overdue[0].ID)
	assert.Equal(t, issues[1].ID, out.DueSoon[0].ID)
	assert.Equal(t, 2, out.Reminders.Created)
}

func TestDashboardService_StudentDashboard_Errors(t *testing.T) {
	student := &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleStudent}
	okRun := reminderFn(func(context.Context, *authDomain.Session) (*reminderDomain.RunResult, error) {
		return &reminderDomain.RunResult{}, nil
	})
	okIssues := &mockIssues{studentFn: func(context.Context, uuid.UUID) ([]circulationDomain.IssueRecord, error) { return nil, nil }}
	okUnread := unreadFn(func(context.Context, uuid.UUID) (int, error) { return 0, nil })

	t.Run("not a student", func(t *testing.T) {
		svc := application.NewDashboardService(&mockRepo{}, okIssues, okUnread, okRun, nil)
		_, err := svc.StudentDashboard(context.Background(), &authDomain.Session{Role: authDomain.RoleLibrarian})
		assert.ErrorIs(t, err, application.ErrForbidden)
	})

	t.Run("reminder run fails", func(t *testing.T) {
		run := reminderFn(func(context.Context, *authDomain.Session) (*reminderDomain.RunResult, error) {
			return nil, reminderDomain.ErrDedupUnavailable
		})
		svc := application.NewDashboardService(&mockRepo{}, okIssues, okUnread, run, nil)
		_, err := svc.StudentDashboard(context.Background(), student)
		assert.ErrorIs(t, err, reminderDomain.ErrDedupUnavailable)
	})

	t.Run("issues fail", func(t *testing.T) {
		issues := &mockIssues{studentFn: func(context.Context, uuid.UUID) ([]circulationDomain.IssueRecord, error) {
			return nil, errors.New("db down")
		}}
		svc := application.NewDashboardService(&mockRepo{}, issues, okUnread, okRun, nil)
		_, err := svc.StudentDashboard(context.Background(), student)
		assert.ErrorContains(t, err, "load issues")
	})

	t.Run("unread fails", func(t *testing.T) {
		unread := unreadFn(func(context.Context, uuid.UUID) (int, error) { return 0, errors.New("db down") })
		svc := application.NewDashboardService(&mockRepo{}, okIssues, unread, okRun, nil)
		_, err := svc.StudentDashboard(context.Background(), student)
		assert.ErrorContains(t, err, "unread")
	})
}

func TestDashboardService_InstitutionDashboard(t *testing.T) {
	inst := uuid.New()
	repo := &mockRepo{
		catalogTotalsFn: func(_ context.Context, id uuid.UUID) (*domain.CatalogTotals, error) {
			assert.Equal(t, inst, id)
			return &domain.CatalogTotals{TotalTitles: 5, TotalCopies: 12, AvailableCopies: 9}, nil
		},
		outstandingFinesFn: func(context.Context, uuid.UUID) (float64, error) { return 70, nil },
	}
	issues := &mockIssues{activeFn: func(context.Context, uuid.UUID) ([]circulationDomain.IssueRecord, error) {
		return []circulationDomain.IssueRecord{
			issueDueIn(0, circulationDomain.StatusIssued, 0),
			issueDueIn(3, circulationDomain.StatusIssued, 0),
			issueDueIn(12, circulationDomain.StatusIssued, 0),
		}, nil
	}}
	svc := application.NewDashboardService(repo, issues, nil, nil, nil).WithClock(func() time.Time { return today })

	for _, role := range []authDomain.Role{authDomain.RoleInstitution, authDomain.RolePrivateLibrary, authDomain.RoleLibrarian} {
		t.Run(string(role), func(t *testing.T) {
			out, err := svc.InstitutionDashboard(context.Background(), &authDomain.Session{Role: role, InstitutionID: inst})
			require.NoError(t, err)
			assert.Equal(t, 5, out.TotalTitles)
			assert.Equal(t, 12, out.TotalCopies)
			assert.Equal(t, 9, out.AvailableCopies)
			assert.Equal(t, 3, out.ActiveIssues)
			assert.Equal(t, 1, out.OverdueIssues)
			assert.Equal(t, 1, out.DueSoonIssues)
			assert.Equal(t, 70.0, out.OutstandingFines)
		})
	}

	t.Run("student forbidden", func(t *testing.T) {
		_, err := svc.InstitutionDashboard(context.Background(), &authDomain.Session{Role: authDomain.RoleStudent, InstitutionID: inst})
		assert.ErrorIs(t, err, application.ErrForbidden)
	})

	t.Run("repo error", func(t *testing.T) {
		broken := &mockRepo{catalogTotalsFn: func(context.Context, uuid.UUID) (*domain.CatalogTotals, error) {
			return nil, errors.New("db down")
		}}
		svc := application.NewDashboardService(broken, issues, nil, nil, nil)
		_, err := svc.InstitutionDashboard(context.Background(), &authDomain.Session{Role: authDomain.RoleLibrarian, InstitutionID: inst})
		assert.Error(t, err)
	})
}

func TestDashboardService_AdminDashboard(t *testing.T) {
	repo := &mockRepo{countUsersByRoleFn: func(context.Context) (map[authDomain.Role]int, error) {
		return map[authDomain.Role]int{
			authDomain.RoleInstitution:    2,
			authDomain.RolePrivateLibrary: 1,
			authDomain.RoleStudent:        40,
			authDomain.RoleLibrarian:      4,
			authDomain.RoleAdmin:          1,
		}, nil
	}}
	svc := application.NewDashboardService(repo, nil, nil, nil, nil)

	out, err := svc.AdminDashboard(context.Background(), &authDomain.Session{Role: authDomain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.AdminDashboard{Institutions: 2, PrivateLibraries: 1, Students: 40, Librarians: 4}, *out)

	_, err = svc.AdminDashboard(context.Background(), &authDomain.Session{Role: authDomain.RoleInstitution})
	assert.ErrorIs(t, err, application.ErrForbidden)
}
