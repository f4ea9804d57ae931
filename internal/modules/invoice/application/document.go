package application

import (
	"time"

	"github.com/google/uuid"

	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
)

// Document is the invoice file handed to the student. Layout is left to the
// client; this is the data it renders.
type Document struct {
	Number        string     `json:"number"`
	IssuedAt      time.Time  `json:"issued_at"`
	InstitutionID uuid.UUID  `json:"institution_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	IssueID       uuid.UUID  `json:"issue_id"`
	BookTitle     string     `json:"book_title"`
	IssueDate     time.Time  `json:"issue_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	DaysLate      int        `json:"days_late"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
}

func newDocument(inv *domain.Invoice, issue *circulationDomain.IssueRecord) Document {
	return Document{
		Number:        inv.Number,
		IssuedAt:      inv.IssuedAt,
		InstitutionID: inv.InstitutionID,
		StudentID:     inv.StudentID,
		IssueID:       inv.IssueID,
		BookTitle:     inv.BookTitle,
		IssueDate:     issue.IssueDate,
		DueDate:       issue.DueDate,
		ReturnDate:    issue.ReturnDate,
		DaysLate:      inv.DaysLate,
		Amount:        inv.Amount,
		Currency:      inv.Currency,
	}
}
