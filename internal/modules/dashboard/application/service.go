package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/dashboard/domain"
	reminderDomain "github.com/saransh1220/libraria/internal/modules/reminder/domain"
)

var ErrForbidden = errors.New("forbidden")

// IssueReader is the circulation side of the dashboards
type IssueReader interface {
	GetStudentIssues(ctx context.Context, studentID uuid.UUID) ([]circulationDomain.IssueRecord, error)
	ActiveIssues(ctx context.Context, institutionID uuid.UUID) ([]circulationDomain.IssueRecord, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type ReminderRunner interface {
	RunForStudent(ctx context.Context, session *authDomain.Session) (*reminderDomain.RunResult, error)
}

type DashboardService struct {
	repo      domain.DashboardRepository
	issues    IssueReader
	unread    UnreadCounter
	reminders ReminderRunner
	now       func() time.Time
	logger    *zap.Logger
}

func NewDashboardService(repo domain.DashboardRepository, issues IssueReader, unread UnreadCounter, reminders ReminderRunner, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:      repo,
		issues:    issues,
		unread:    unread,
		reminders: reminders,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// StudentDashboard runs the reminder generator for the student, then
// summarises their loans. Reminders are generated first so the unread count
// includes anything created by this visit.
func (s *DashboardService) StudentDashboard(ctx context.Context, session *authDomain.Session) (*domain.StudentDashboard, error) {
	if session.Role != authDomain.RoleStudent {
		return nil, ErrForbidden
	}

	run, err := s.reminders.RunForStudent(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("generate reminders: %w", err)
	}

	issues, err := s.issues.GetStudentIssues(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}

	unread, err := s.unread.UnreadCount(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	now := s.now()
	overdue := circulationDomain.OverdueIssues(issues, now)
	dueSoon := circulationDomain.DueSoonIssues(issues, now)

	return &domain.StudentDashboard{
		IssuedCount:         circulationDomain.CountByStatus(issues, circulationDomain.StatusIssued),
		OverdueCount:        len(overdue),
		DueSoonCount:        len(dueSoon),
		ReturnedCount:       circulationDomain.CountByStatus(issues, circulationDomain.StatusReturned),
		UnreadNotifications: unread,
		TotalFines:          circulationDomain.TotalFines(issues),
		Overdue:             overdue,
		DueSoon:             dueSoon,
		Reminders:           domain.SummaryOf(run),
	}, nil
}

// InstitutionDashboard is the staff view of one institution
func (s *DashboardService) InstitutionDashboard(ctx context.Context, session *authDomain.Session) (*domain.InstitutionDashboard, error) {
	if !session.HasRole(authDomain.RoleInstitution, authDomain.RolePrivateLibrary, authDomain.RoleLibrarian) || session.InstitutionID == uuid.Nil {
		return nil, ErrForbidden
	}
	inst := session.InstitutionID

	totals, err := s.repo.CatalogTotals(ctx, inst)
	if err != nil {
		return nil, err
	}
	active, err := s.issues.ActiveIssues(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("load active issues: %w", err)
	}
	fines, err := s.repo.OutstandingFines(ctx, inst)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &domain.InstitutionDashboard{
		CatalogTotals:    *totals,
		ActiveIssues:     len(active),
		OverdueIssues:    len(circulationDomain.OverdueIssues(active, now)),
		DueSoonIssues:    len(circulationDomain.DueSoonIssues(active, now)),
		OutstandingFines: fines,
	}, nil
}

func (s *DashboardService) AdminDashboard(ctx context.Context, session *authDomain.Session) (*domain.AdminDashboard, error) {
	if session.Role != authDomain.RoleAdmin {
		return nil, ErrForbidden
	}

	counts, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.AdminDashboard{
		Institutions:     counts[authDomain.RoleInstitution],
		PrivateLibraries: counts[authDomain.RolePrivateLibrary],
		Students:         counts[authDomain.RoleStudent],
		Librarians:       counts[authDomain.RoleLibrarian],
	}, nil
}
