package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	catalogDomain "github.com/saransh1220/libraria/internal/modules/catalog/domain"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
)

type PgIssueRepository struct {
	db *sqlx.DB
}

func NewIssueRepository(db *sqlx.DB) *PgIssueRepository {
	return &PgIssueRepository{db: db}
}

const issueSelect = `
	SELECT ir.*, b.title AS book_title
	FROM issue_records ir
	JOIN books b ON b.id = ir.book_id`

func (r *PgIssueRepository) Issue(ctx context.Context, issue *domain.IssueRecord) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	now := time.Now()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	issue.Status = domain.StatusIssued

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Take a copy; the guard keeps available_copies from going negative
	res, err := tx.ExecContext(ctx, `
		UPDATE books SET available_copies = available_copies - 1, updated_at = $1
		WHERE id = $2 AND institution_id = $3 AND is_deleted = FALSE AND available_copies > 0`,
		now, issue.BookID, issue.InstitutionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1 AND institution_id = $2 AND is_deleted = FALSE)`,
			issue.BookID, issue.InstitutionID); err != nil {
			return err
		}
		if !exists {
			return catalogDomain.ErrBookNotFound
		}
		return domain.ErrBookUnavailable
	}

	// 2. Record the loan
	query := `
		INSERT INTO issue_records (
			id, book_id, student_id, institution_id, issue_date, due_date,
			status, fine, created_at, updated_at
		) VALUES (
			:id, :book_id, :student_id, :institution_id, :issue_date, :due_date,
			:status, :fine, :created_at, :updated_at
		)`
	if _, err := tx.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("insert issue record: %w", err)
	}

	return tx.Commit()
}

func (r *PgIssueRepository) Return(ctx context.Context, issue *domain.IssueRecord) error {
	issue.UpdatedAt = time.Now()
	issue.Status = domain.StatusReturned

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		UPDATE issue_records
		SET status = :status, return_date = :return_date, fine = :fine, updated_at = :updated_at
		WHERE id = :id AND status = 'issued'`, issue)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrAlreadyReturned
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE books SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = $1
		WHERE id = $2`, issue.UpdatedAt, issue.BookID); err != nil {
		return fmt.Errorf("restore copy: %w", err)
	}

	return tx.Commit()
}

func (r *PgIssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IssueRecord, error) {
	issue := &domain.IssueRecord{}
	err := r.db.GetContext(ctx, issue, issueSelect+` WHERE ir.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *PgIssueRepository) GetStudentIssues(ctx context.Context, studentID uuid.UUID) ([]domain.IssueRecord, error) {
	issues := []domain.IssueRecord{}
	if err := r.db.SelectContext(ctx, &issues,
		issueSelect+` WHERE ir.student_id = $1 ORDER BY ir.issue_date DESC`, studentID); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *PgIssueRepository) ListByInstitution(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueRecord, int, error) {
	var results []struct {
		domain.IssueRecord
		TotalCount int `db:"total_count"`
	}

	query := `
		SELECT ir.*, b.title AS book_title, COUNT(*) OVER() as total_count
		FROM issue_records ir
		JOIN books b ON b.id = ir.book_id
		WHERE ir.institution_id = $1`
	args := []interface{}{filter.InstitutionID}
	argId := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND ir.status = $%d", argId)
		args = append(args, filter.Status)
		argId++
	}
	if filter.StudentID != uuid.Nil {
		query += fmt.Sprintf(" AND ir.student_id = $%d", argId)
		args = append(args, filter.StudentID)
		argId++
	}

	query += fmt.Sprintf(" ORDER BY ir.issue_date DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, filter.Limit, filter.Offset)

	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, err
	}
	if len(results) == 0 {
		return []domain.IssueRecord{}, 0, nil
	}

	issues := make([]domain.IssueRecord, len(results))
	for i, res := range results {
		issues[i] = res.IssueRecord
	}
	return issues, results[0].TotalCount, nil
}

// ListActiveByInstitution returns every loan still out, soonest due first
func (r *PgIssueRepository) ListActiveByInstitution(ctx context.Context, institutionID uuid.UUID) ([]domain.IssueRecord, error) {
	issues := []domain.IssueRecord{}
	if err := r.db.SelectContext(ctx, &issues,
		issueSelect+` WHERE ir.institution_id = $1 AND ir.status = 'issued' ORDER BY ir.due_date`, institutionID); err != nil {
		return nil, err
	}
	return issues, nil
}
