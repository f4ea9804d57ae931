package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
	userDomain "github.com/saransh1220/libraria/internal/modules/user/domain"
)

// StudentDirectory resolves an active student of an institution
type StudentDirectory interface {
	FindStudent(ctx context.Context, institutionID, studentID uuid.UUID) (*authDomain.User, error)
}

// CirculationService runs the lending desk: issuing, returning and the
// overdue/due-soon views built on the due-state classifier.
type CirculationService struct {
	repo     domain.IssueRepository
	students StudentDirectory
	invoicer domain.FineInvoicer
	policy   domain.FinePolicy
	now      func() time.Time
	logger   *zap.Logger
}

func NewCirculationService(repo domain.IssueRepository, students StudentDirectory, invoicer domain.FineInvoicer, policy domain.FinePolicy, logger *zap.Logger) *CirculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CirculationService{
		repo:     repo,
		students: students,
		invoicer: invoicer,
		policy:   policy,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the wall clock, used by tests to pin "today"
func (s *CirculationService) WithClock(now func() time.Time) *CirculationService {
	s.now = now
	return s
}

func (s *CirculationService) IssueBook(ctx context.Context, actor *authDomain.Session, req IssueRequest) (*IssueResponse, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	if req.DueDate.IsZero() || domain.DaysUntilDue(req.DueDate, now) < 0 {
		return nil, domain.ErrInvalidDueDate
	}

	if _, err := s.students.FindStudent(ctx, actor.InstitutionID, req.StudentID); err != nil {
		if errors.Is(err, userDomain.ErrMemberNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	issue := &domain.IssueRecord{
		BookID:        req.BookID,
		StudentID:     req.StudentID,
		InstitutionID: actor.InstitutionID,
		IssueDate:     now,
		DueDate:       req.DueDate,
	}
	if err := s.repo.Issue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("book issued",
		zap.String("issue_id", issue.ID.String()),
		zap.String("book_id", issue.BookID.String()),
		zap.String("student_id", issue.StudentID.String()),
		zap.Time("due_date", issue.DueDate))

	resp := toIssueResponse(*issue, now)
	return &resp, nil
}

// ReturnBook closes a loan. A zero returnDate means now. When the return is
// late the fine is stored on the record and an invoice is raised; invoicing
// failures are logged and do not undo the return.
func (s *CirculationService) ReturnBook(ctx context.Context, actor *authDomain.Session, issueID uuid.UUID, returnDate time.Time) (*IssueResponse, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	issue, err := s.repo.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.InstitutionID != actor.InstitutionID {
		return nil, domain.ErrIssueNotFound
	}
	if !issue.Active() {
		return nil, domain.ErrAlreadyReturned
	}

	if returnDate.IsZero() {
		returnDate = s.now()
	}
	issue.ReturnDate = &returnDate
	issue.Fine = s.policy.Compute(issue.DueDate, returnDate)

	if err := s.repo.Return(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("book returned",
		zap.String("issue_id", issue.ID.String()),
		zap.Int("days_late", domain.DaysLate(issue.DueDate, returnDate)),
		zap.Float64("fine", issue.Fine))

	if issue.Fine > 0 && s.invoicer != nil {
		if err := s.invoicer.RaiseFineInvoice(ctx, issue, issue.Fine, s.policy.Currency, returnDate); err != nil {
			s.logger.Error("failed to raise fine invoice",
				zap.String("issue_id", issue.ID.String()),
				zap.Error(err))
		}
	}

	resp := toIssueResponse(*issue, s.now())
	return &resp, nil
}

// GetIssue returns a record visible to the actor: staff see their
// institution, students only their own loans.
func (s *CirculationService) GetIssue(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*IssueResponse, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, issue) {
		return nil, domain.ErrIssueNotFound
	}
	resp := toIssueResponse(*issue, s.now())
	return &resp, nil
}

func visible(actor *authDomain.Session, issue *domain.IssueRecord) bool {
	if actor.Role == authDomain.RoleStudent {
		return issue.StudentID == actor.UserID
	}
	return actor.CanAccessInstitution(issue.InstitutionID)
}

// GetStudentIssues returns every loan of a student, newest first
func (s *CirculationService) GetStudentIssues(ctx context.Context, studentID uuid.UUID) ([]domain.IssueRecord, error) {
	return s.repo.GetStudentIssues(ctx, studentID)
}

// MyIssues is GetStudentIssues for the signed-in student, with derived states
func (s *CirculationService) MyIssues(ctx context.Context, actor *authDomain.Session) ([]IssueResponse, error) {
	issues, err := s.repo.GetStudentIssues(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toIssueResponses(issues, s.now()), nil
}

func (s *CirculationService) ListInstitutionIssues(ctx context.Context, actor *authDomain.Session, filter domain.IssueFilter) (*IssueList, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	filter.InstitutionID = actor.InstitutionID

	issues, total, err := s.repo.ListByInstitution(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &IssueList{
		Issues: toIssueResponses(issues, s.now()),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// ActiveIssues returns the loans still out in an institution
func (s *CirculationService) ActiveIssues(ctx context.Context, institutionID uuid.UUID) ([]domain.IssueRecord, error) {
	return s.repo.ListActiveByInstitution(ctx, institutionID)
}

func (s *CirculationService) OverdueIssues(ctx context.Context, actor *authDomain.Session) ([]IssueResponse, error) {
	return s.activeByState(ctx, actor, domain.OverdueIssues)
}

func (s *CirculationService) DueSoonIssues(ctx context.Context, actor *authDomain.Session) ([]IssueResponse, error) {
	return s.activeByState(ctx, actor, domain.DueSoonIssues)
}

func (s *CirculationService) activeByState(ctx context.Context, actor *authDomain.Session, pick func([]domain.IssueRecord, time.Time) []domain.IssueRecord) ([]IssueResponse, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	issues, err := s.repo.ListActiveByInstitution(ctx, actor.InstitutionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return toIssueResponses(pick(issues, now), now), nil
}
