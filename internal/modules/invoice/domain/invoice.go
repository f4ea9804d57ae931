package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPaid
}

// Invoice is the fine raised when a book comes back late
type Invoice struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Number        string        `json:"number" db:"number"`
	IssueID       uuid.UUID     `json:"issue_id" db:"issue_id"`
	StudentID     uuid.UUID     `json:"student_id" db:"student_id"`
	InstitutionID uuid.UUID     `json:"institution_id" db:"institution_id"`
	BookTitle     string        `json:"book_title" db:"book_title"`
	DaysLate      int           `json:"days_late" db:"days_late"`
	Amount        float64       `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        InvoiceStatus `json:"status" db:"status"`
	DocumentKey   string        `json:"-" db:"document_key"`
	IssuedAt      time.Time     `json:"issued_at" db:"issued_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// NumberFor formats an invoice number as INV-<yyyymmdd>-<first 8 of id>
func NumberFor(id uuid.UUID, issuedAt time.Time) string {
	return fmt.Sprintf("INV-%s-%s", issuedAt.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// DocumentKey is where the invoice document lives in file storage
func DocumentKey(institutionID, id uuid.UUID) string {
	return fmt.Sprintf("invoices/%s/%s.json", institutionID, id)
}

// InvoiceFilter selects invoices. A nil InstitutionID lists every
// institution, a nil StudentID every student.
type InvoiceFilter struct {
	InstitutionID uuid.UUID
	StudentID     uuid.UUID
	Status        InvoiceStatus
	Limit         int
	Offset        int
}
