package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type IssueRepository interface {
	// Issue takes one available copy of the book and records the loan atomically
	Issue(ctx context.Context, issue *IssueRecord) error
	// Return closes an active loan and puts the copy back atomically
	Return(ctx context.Context, issue *IssueRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*IssueRecord, error)
	GetStudentIssues(ctx context.Context, studentID uuid.UUID) ([]IssueRecord, error)
	ListByInstitution(ctx context.Context, filter IssueFilter) ([]IssueRecord, int, error)
	ListActiveByInstitution(ctx context.Context, institutionID uuid.UUID) ([]IssueRecord, error)
}

// FineInvoicer raises an invoice for a fined return
type FineInvoicer interface {
	RaiseFineInvoice(ctx context.Context, issue *IssueRecord, amount float64, currency string, issuedAt time.Time) error
}
