package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
)

type PgInvoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) *PgInvoiceRepository {
	return &PgInvoiceRepository{db: db}
}

func (r *PgInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusUnpaid
	}

	query := `
		INSERT INTO invoices (
			id, number, issue_id, student_id, institution_id, book_title,
			days_late, amount, currency, status, document_key, issued_at,
			paid_at, created_at
		) VALUES (
			:id, :number, :issue_id, :student_id, :institution_id, :book_title,
			:days_late, :amount, :currency, :status, :document_key, :issued_at,
			:paid_at, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *PgInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	err := r.db.GetContext(ctx, invoice, `SELECT * FROM invoices WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *PgInvoiceRepository) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	var results []struct {
		domain.Invoice
		TotalCount int `db:"total_count"`
	}

	query := `SELECT *, COUNT(*) OVER() AS total_count FROM invoices WHERE TRUE`
	args := []interface{}{}
	argId := 1

	if filter.InstitutionID != uuid.Nil {
		query += fmt.Sprintf(" AND institution_id = $%d", argId)
		args = append(args, filter.InstitutionID)
		argId++
	}
	if filter.StudentID != uuid.Nil {
		query += fmt.Sprintf(" AND student_id = $%d", argId)
		args = append(args, filter.StudentID)
		argId++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argId)
		args = append(args, filter.Status)
		argId++
	}

	query += fmt.Sprintf(" ORDER BY issued_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, filter.Limit, filter.Offset)

	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, err
	}
	if len(results) == 0 {
		return []domain.Invoice{}, 0, nil
	}

	invoices := make([]domain.Invoice, len(results))
	for i, res := range results {
		invoices[i] = res.Invoice
	}
	return invoices, results[0].TotalCount, nil
}

func (r *PgInvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = $1 WHERE id = $2 AND status = 'unpaid'`,
		paidAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return domain.ErrInvoiceNotFound
	}
	return domain.ErrAlreadyPaid
}
