package domain

import (
	"time"

	"github.com/google/uuid"
)

type IssueStatus string

const (
	StatusIssued   IssueStatus = "issued"
	StatusReturned IssueStatus = "returned"
	// StatusOverdue is never stored; see IssueRecord.EffectiveStatus
	StatusOverdue IssueStatus = "overdue"
)

// IssueRecord is one loan of one book copy to one student
type IssueRecord struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	BookID        uuid.UUID   `json:"book_id" db:"book_id"`
	StudentID     uuid.UUID   `json:"student_id" db:"student_id"`
	InstitutionID uuid.UUID   `json:"institution_id" db:"institution_id"`
	IssueDate     time.Time   `json:"issue_date" db:"issue_date"`
	DueDate       time.Time   `json:"due_date" db:"due_date"`
	ReturnDate    *time.Time  `json:"return_date,omitempty" db:"return_date"`
	Status        IssueStatus `json:"status" db:"status"`
	Fine          float64     `json:"fine" db:"fine"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	// Read-only, filled by joins
	BookTitle string `json:"book_title,omitempty" db:"book_title"`
}

// Active reports whether the copy is still out
func (i IssueRecord) Active() bool {
	return i.Status == StatusIssued
}

// EffectiveStatus is the status shown to users: an active loan past its due
// day reads as overdue.
func (i IssueRecord) EffectiveStatus(now time.Time) IssueStatus {
	if i.Active() && Classify(i.DueDate, now) == DueStateOverdue {
		return StatusOverdue
	}
	return i.Status
}

// IssueFilter narrows institution-wide listings
type IssueFilter struct {
	InstitutionID uuid.UUID
	StudentID     uuid.UUID
	Status        IssueStatus
	Limit         int
	Offset        int
}
