package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/reminder/domain"
)

var ErrStudentsOnly = errors.New("reminders are generated for students only")

// ReminderService loads a student's loans and the institution catalogue and
// hands them to the generator
type ReminderService struct {
	issues    domain.IssueStore
	books     domain.BookStore
	generator *Generator
	logger    *zap.Logger
}

func NewReminderService(issues domain.IssueStore, books domain.BookStore, generator *Generator, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{issues: issues, books: books, generator: generator, logger: logger}
}

// RunForStudent generates the calling student's reminders for today
func (s *ReminderService) RunForStudent(ctx context.Context, session *authDomain.Session) (*domain.RunResult, error) {
	if session == nil || session.Role != authDomain.RoleStudent {
		return nil, ErrStudentsOnly
	}

	issues, err := s.issues.GetStudentIssues(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}
	books, err := s.books.GetAllBooks(ctx, session.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}

	return s.generator.Run(ctx, RunInput{
		StudentID:     session.UserID,
		InstitutionID: session.InstitutionID,
		Issues:        issues,
		Books:         books,
	})
}
